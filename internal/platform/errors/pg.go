package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes mapped to something other than ErrorCodeDB
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23503": ErrorCodeInvalidArgument, // foreign key: the input named a missing row
	"22001": ErrorCodeInvalidArgument, // string too long
	"22P02": ErrorCodeInvalidArgument, // bad text representation
	"25006": ErrorCodeUnavailable,     // read only transaction, replica promoted
	"57P03": ErrorCodeUnavailable,     // cannot connect now
}

// FromPostgres wraps err with a code derived from its SQLSTATE; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		if c, ok := pgCodes[pgErr.Code]; ok {
			code = c
		}
	}
	return Wrap(err, code, msg)
}

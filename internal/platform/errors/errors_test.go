package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	cases := map[ErrorCode]int{
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeTooManyRequests: http.StatusTooManyRequests,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeDB:              http.StatusInternalServerError,
		ErrorCode("made_up"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatusCode(code); got != want {
			t.Fatalf("%s: %d want %d", code, got, want)
		}
	}
}

func TestWrapAndInspect(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("conn reset")
	err := fmt.Errorf("rebuild en: %w", Wrap(cause, ErrorCodeDB, "ranked query"))

	if !IsCode(err, ErrorCodeDB) || HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("code = %s", CodeOf(err))
	}
	if Root(err) != cause {
		t.Fatalf("root = %v", Root(err))
	}
	if err.Error() != "rebuild en: ranked query: conn reset" {
		t.Fatalf("message = %q", err.Error())
	}
	if CodeOf(cause) != ErrorCodeUnknown || Root(nil) != nil {
		t.Fatalf("foreign error classified")
	}
}

func TestWithField_CopiesOnWrite(t *testing.T) {
	t.Parallel()

	base := New(ErrorCodeValidation, "tag is empty")
	tagged := WithField(base, "tag")

	if e, _ := As(tagged); e.Field() != "tag" {
		t.Fatalf("field = %q", e.Field())
	}
	if e, _ := As(base); e.Field() != "" {
		t.Fatalf("original mutated")
	}
	plain := stderrs.New("x")
	if WithField(plain, "tag") != plain {
		t.Fatalf("foreign error rewrapped")
	}
}

func TestWireFrom_HidesCause(t *testing.T) {
	t.Parallel()

	w := WireFrom(WithField(Wrap(stderrs.New("secret dsn"), ErrorCodeValidation, "bad limit"), "limit"))
	if w.Code != ErrorCodeValidation || w.Message != "bad limit" || w.Field != "limit" {
		t.Fatalf("wire = %+v", w)
	}
	if w := WireFrom(stderrs.New("secret dsn")); w.Message != "internal error" || w.Code != ErrorCodeUnknown {
		t.Fatalf("foreign wire = %+v", w)
	}
}

func TestFromPostgres(t *testing.T) {
	t.Parallel()

	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil wrapped")
	}
	cases := map[string]ErrorCode{
		"23505": ErrorCodeDuplicateKey,
		"22P02": ErrorCodeInvalidArgument,
		"57P03": ErrorCodeUnavailable,
		"40001": ErrorCodeDB,
	}
	for state, want := range cases {
		err := FromPostgres(fmt.Errorf("query: %w", &pgconn.PgError{Code: state}), "ranked query")
		if CodeOf(err) != want {
			t.Fatalf("%s: %s want %s", state, CodeOf(err), want)
		}
	}
	if !IsCode(FromPostgres(stderrs.New("eof"), "scan"), ErrorCodeDB) {
		t.Fatalf("non pg error not mapped to db")
	}
}

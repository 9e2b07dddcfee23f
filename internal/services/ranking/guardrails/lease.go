// Package guardrails provides the cross-process lease around a locale rebuild
package guardrails

import (
	"context"
	"errors"

	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
)

// ErrLeaseHeld signals another worker is rebuilding the locale already
var ErrLeaseHeld = errors.New("ranking: locale lease already held")

// LeaseFunc runs do while holding the lease for locale
type LeaseFunc func(ctx context.Context, locale string, do func(context.Context) error) error

// MakeFeedLease takes a transaction scoped advisory lock per locale
// the lock lives as long as the transaction, so it is released on commit, rollback or a dropped connection
func MakeFeedLease(db repokit.TxRunner) LeaseFunc {
	if db == nil {
		panic("guardrails: MakeFeedLease requires a non nil TxRunner")
	}
	return func(ctx context.Context, locale string, do func(context.Context) error) error {
		return db.Tx(ctx, func(q repokit.Queryer) error {
			var ok bool
			if err := q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, "feed:"+locale).Scan(&ok); err != nil {
				return perr.FromPostgres(err, "feed lease")
			}
			if !ok {
				return ErrLeaseHeld
			}
			return do(ctx)
		})
	}
}

// Package repokit is the seam between domain repos and the store
// repos bind to a Queryer so the same code runs on the pool or inside a Tx
package repokit

import "potluck/internal/platform/store"

type (
	// Queryer is the statement surface a bound repo runs on
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can open transactions
	TxRunner = store.TxRunner
)

// Binder builds a domain repo over q
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q and panics on a nil Queryer
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

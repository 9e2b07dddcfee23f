package repokit

import (
	"context"
	"testing"

	"potluck/internal/platform/store"
	"potluck/internal/platform/testkit"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (store.Rows, error)       { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }

type counts struct{ q Queryer }

func TestMustBind(t *testing.T) {
	t.Parallel()

	b := BindFunc[counts](func(q Queryer) counts { return counts{q: q} })
	if got := MustBind[counts](b, nopDB{}); got.q == nil {
		t.Fatalf("queryer not bound")
	}
	testkit.MustPanic(t, func() { MustBind[counts](b, nil) })
}

package store

import (
	"context"
	"errors"
	"fmt"

	"potluck/internal/platform/store/ch"
)

// chAdapter exposes *ch.CH as the Clickhouse seam
type chAdapter struct {
	c *ch.CH
}

var _ Clickhouse = (*chAdapter)(nil)

func newCHAdapter(c *ch.CH) *chAdapter { return &chAdapter{c: c} }

// Insert accepts rows as [][]any, one slice per row in column order
func (a *chAdapter) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert into %s wants [][]any, got %T", table, data)
	}
	return a.c.Insert(ctx, table, rows)
}

func (a *chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (a *chAdapter) Close() error { return a.c.Close() }

// Ping checks the handshake then that a query round trips
func (a *chAdapter) Ping(ctx context.Context) error {
	if a == nil || a.c == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	if err := a.c.Ping(ctx); err != nil {
		return err
	}
	r, err := a.c.Query(ctx, "SELECT toInt32(1)")
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	var one int32
	if !r.Next() {
		return errors.Join(errors.New("store: clickhouse ping returned no rows"), r.Err())
	}
	if err := r.Scan(&one); err != nil {
		return err
	}
	return r.Err()
}

type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }

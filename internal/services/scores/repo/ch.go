package repo

import (
	"context"
	"errors"

	"potluck/internal/platform/store"
	"potluck/internal/services/scores/domain"
)

// viewsSQL sums recorded views per public ref
const viewsSQL = `
SELECT item_ref, toInt64(sum(views))
FROM item_views
WHERE item_kind = ? AND item_ref IN (?)
GROUP BY item_ref`

// CHViews reads view counts from the ClickHouse item_views table
type CHViews struct {
	ch store.Clickhouse
}

// NewCHViews wraps ch; it panics on nil
func NewCHViews(ch store.Clickhouse) *CHViews {
	if ch == nil {
		panic("scores: NewCHViews requires a non nil Clickhouse")
	}
	return &CHViews{ch: ch}
}

// Views returns the view total per ref; refs with no events are absent
func (v *CHViews) Views(ctx context.Context, t domain.Table, refs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	rows, err := v.ch.Query(ctx, viewsSQL, t.Kind(), refs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ref string
			n   int64
		)
		if err := rows.Scan(&ref, &n); err != nil {
			return nil, err
		}
		out[ref] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(errors.New("scores: clickhouse views"), err)
	}
	return out, nil
}

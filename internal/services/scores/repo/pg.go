// Package repo provides score recompute storage
package repo

import (
	"context"
	"time"

	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
	"potluck/internal/services/scores/domain"
)

type (
	// PG implements domain.StorageRepo over Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres score repo binder
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind binds a Postgres queryer to the StorageRepo implementation
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// scan statements per table; table names never come from input
var scanSQL = map[domain.Table]string{
	domain.TableRecipes: `
SELECT id, public_id::text, view_count, saved_count, comment_count
FROM recipes
WHERE id > $1
ORDER BY id
LIMIT $2`,
	domain.TableLogs: `
SELECT id, public_id::text, 0::bigint, saved_count, comment_count
FROM cooking_logs
WHERE id > $1
ORDER BY id
LIMIT $2`,
}

var applySQL = map[domain.Table]string{
	domain.TableRecipes: `
UPDATE recipes AS t
SET popularity_score = u.pop, controversy_score = u.con, scores_at = $4
FROM unnest($1::bigint[], $2::float8[], $3::float8[]) AS u(id, pop, con)
WHERE t.id = u.id`,
	domain.TableLogs: `
UPDATE cooking_logs AS t
SET popularity_score = u.pop, controversy_score = u.con, scores_at = $4
FROM unnest($1::bigint[], $2::float8[], $3::float8[]) AS u(id, pop, con)
WHERE t.id = u.id`,
}

func (r *queries) ScanBatch(ctx context.Context, t domain.Table, afterID int64, limit int) ([]domain.EngagementRow, error) {
	sql, ok := scanSQL[t]
	if !ok {
		return nil, perr.InvalidArgf("scores: unknown table %q", t)
	}
	rows, err := r.q.Query(ctx, sql, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "scores scan")
	}
	defer rows.Close()

	out := make([]domain.EngagementRow, 0, limit)
	for rows.Next() {
		var e domain.EngagementRow
		if err := rows.Scan(&e.ID, &e.Ref, &e.Views, &e.Saves, &e.Comments); err != nil {
			return nil, perr.FromPostgres(err, "scores scan")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "scores scan")
	}
	return out, nil
}

func (r *queries) ApplyScores(ctx context.Context, t domain.Table, updates []domain.ScoreUpdate, at time.Time) (int64, error) {
	sql, ok := applySQL[t]
	if !ok {
		return 0, perr.InvalidArgf("scores: unknown table %q", t)
	}
	if len(updates) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(updates))
	pop := make([]float64, len(updates))
	con := make([]float64, len(updates))
	for i, u := range updates {
		ids[i], pop[i], con[i] = u.ID, u.Popularity, u.Controversy
	}
	tag, err := r.q.Exec(ctx, sql, ids, pop, con, at.UTC())
	if err != nil {
		return 0, perr.FromPostgres(err, "scores apply")
	}
	return tag.RowsAffected(), nil
}

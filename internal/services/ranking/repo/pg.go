// Package repo provides content store access for ranking
package repo

import (
	"context"
	"strconv"
	"strings"
	"time"

	"potluck/internal/core/cursor"
	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
	"potluck/internal/services/ranking/domain"
)

// MaxLimit bounds a single ranked query
const MaxLimit = 1000

type (
	// PG implements domain.ContentStore over Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres content store binder
func NewPG() repokit.Binder[domain.ContentStore] { return PG{} }

// Bind binds a Postgres queryer to the ContentStore implementation
func (PG) Bind(q repokit.Queryer) domain.ContentStore { return &queries{q: q} }

// QueryRanked runs one keyset page of a ranked query
func (r *queries) QueryRanked(ctx context.Context, in domain.RankedQuery) ([]domain.RankableItem, bool, error) {
	sql, args, err := BuildRanked(in)
	if err != nil {
		return nil, false, err
	}
	limit := clampLimit(in.Limit)

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, false, perr.FromPostgres(err, "ranked query")
	}
	defer rows.Close()

	out := make([]domain.RankableItem, 0, limit+1)
	for rows.Next() {
		var (
			it      domain.RankableItem
			author  *string
			savedAt *time.Time
		)
		if err := rows.Scan(
			&it.ID,
			&it.Ref,
			&author,
			&it.Locale,
			&it.CreatedAt,
			&it.Popularity,
			&it.Controversy,
			&it.CommentCount,
			&it.SavedCount,
			&it.Rating,
			&savedAt,
		); err != nil {
			return nil, false, perr.FromPostgres(err, "ranked query")
		}
		if author != nil {
			it.AuthorRef = *author
		}
		if savedAt != nil {
			it.SavedAt = savedAt.UTC()
		}
		it.CreatedAt = it.CreatedAt.UTC()
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, false, perr.FromPostgres(err, "ranked query")
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}

// source describes one content table
type source struct {
	table    string
	tagJoin  string // join table linking rows to hashtags
	tagFK    string
	rating   string
	canSaved bool
}

var sources = map[domain.Source]source{
	domain.SourceRecipes: {table: "recipes", tagJoin: "recipe_hashtags", tagFK: "recipe_id", rating: "0", canSaved: true},
	domain.SourceLogs:    {table: "cooking_logs", tagJoin: "log_hashtags", tagFK: "log_id", rating: "t.rating"},
}

var orderKeys = map[domain.Order]string{
	domain.OrderRecency:     "t.created_at",
	domain.OrderPopularity:  "t.popularity_score",
	domain.OrderControversy: "t.controversy_score",
	domain.OrderComments:    "t.comment_count",
	domain.OrderSaves:       "t.saved_count",
	domain.OrderSavedAt:     "s.saved_at",
}

// argList collects positional args and hands back their placeholders
type argList []any

func (a *argList) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// BuildRanked renders the SQL and args for q
// ordering is always (key desc, id desc) and the cursor resumes strictly after (key, id)
func BuildRanked(q domain.RankedQuery) (string, []any, error) {
	src, ok := sources[q.Source]
	if !ok {
		return "", nil, perr.InvalidArgf("unknown source %q", q.Source)
	}
	if !q.Order.Valid() {
		return "", nil, perr.InvalidArgf("unknown order %q", q.Order)
	}
	if q.SavedByRef != "" && !src.canSaved {
		return "", nil, perr.InvalidArgf("saved filter is not supported for %s", q.Source)
	}
	if q.Order == domain.OrderSavedAt && q.SavedByRef == "" {
		return "", nil, perr.InvalidArgf("saved_at order requires a saved-by user")
	}
	if (q.RatingMin > 0 || q.RatingMax > 0) && q.Source != domain.SourceLogs {
		return "", nil, perr.InvalidArgf("rating filter is only supported for logs")
	}
	if !q.Cursor.IsZero() && q.Cursor.Kind != q.Order.Kind() {
		return "", nil, perr.InvalidArgf("cursor kind %s does not page order %s", q.Cursor.Kind, q.Order)
	}

	key := orderKeys[q.Order]
	var args argList
	var b strings.Builder

	savedAt := "NULL::timestamptz"
	if q.SavedByRef != "" {
		savedAt = "s.saved_at"
	}

	b.WriteString("SELECT t.id, t.public_id::text, u.public_id::text, t.locale, t.created_at, ")
	b.WriteString("t.popularity_score, t.controversy_score, t.comment_count, t.saved_count, ")
	b.WriteString(src.rating + ", " + savedAt + "\n")
	b.WriteString("FROM " + src.table + " t\n")
	b.WriteString("LEFT JOIN users u ON u.id = t.author_id\n")
	if q.SavedByRef != "" {
		b.WriteString("JOIN saved_recipes s ON s.recipe_id = t.id\n")
		b.WriteString("JOIN users su ON su.id = s.user_id AND su.public_id = " + args.add(q.SavedByRef) + "::uuid\n")
	}

	b.WriteString("WHERE t.is_deleted = false AND t.is_private = false")
	if q.Locale != "" {
		b.WriteString(" AND t.locale = " + args.add(q.Locale))
	}
	if !q.After.IsZero() {
		b.WriteString(" AND t.created_at >= " + args.add(q.After.UTC()))
	}
	if q.MinPopularity > 0 {
		b.WriteString(" AND t.popularity_score >= " + args.add(q.MinPopularity))
	}
	if q.MinControversy > 0 {
		b.WriteString(" AND t.controversy_score >= " + args.add(q.MinControversy))
	}
	if q.AuthorRef != "" {
		b.WriteString(" AND u.public_id = " + args.add(q.AuthorRef) + "::uuid")
	}
	if q.Hashtag != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM " + src.tagJoin + " th JOIN hashtags h ON h.id = th.hashtag_id")
		b.WriteString(" WHERE th." + src.tagFK + " = t.id AND h.name = " + args.add(q.Hashtag) + ")")
	}
	if q.RatingMin > 0 {
		b.WriteString(" AND t.rating >= " + args.add(q.RatingMin))
	}
	if q.RatingMax > 0 {
		b.WriteString(" AND t.rating <= " + args.add(q.RatingMax))
	}
	if !q.Cursor.IsZero() {
		b.WriteString(" AND (" + key + ", t.id) < (" + args.add(cursorKey(q.Cursor)) + ", " + args.add(q.Cursor.ID) + ")")
	}
	b.WriteString("\nORDER BY " + key + " DESC, t.id DESC\n")
	b.WriteString("LIMIT " + args.add(clampLimit(q.Limit)+1))

	return b.String(), args, nil
}

func cursorKey(c cursor.Cursor) any { return c.Key() }

func clampLimit(n int) int {
	if n <= 0 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

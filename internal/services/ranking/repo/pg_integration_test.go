//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"potluck/internal/platform/store"
	"potluck/internal/platform/store/schema"
	"potluck/internal/services/ranking/domain"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	return dsn, func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
}

func seed(t *testing.T, ctx context.Context, q store.RowQuerier) {
	t.Helper()

	stmts := []string{
		`INSERT INTO users (id, username) VALUES (1, 'ada'), (2, 'bo')`,
		`INSERT INTO recipes (id, author_id, title, locale, created_at, popularity_score, comment_count, is_deleted, is_private) VALUES
			(1, 1, 'a', 'en', now() - interval '1 hour', 10, 1, false, false),
			(2, 1, 'b', 'en', now() - interval '2 hour', 10, 5, false, false),
			(3, 2, 'c', 'en', now() - interval '3 hour', 30, 0, false, false),
			(4, 2, 'd', 'en', now() - interval '4 hour', 99, 0, true,  false),
			(5, 2, 'e', 'en', now() - interval '5 hour', 99, 0, false, true),
			(6, 2, 'f', 'fr', now() - interval '6 hour', 99, 0, false, false),
			(7, 1, 'g', 'en', now() - interval '30 day', 50, 0, false, false)`,
		`INSERT INTO hashtags (id, name) VALUES (1, 'pasta')`,
		`INSERT INTO recipe_hashtags (recipe_id, hashtag_id) VALUES (2, 1), (3, 1)`,
		`INSERT INTO saved_recipes (user_id, recipe_id, saved_at) VALUES (2, 1, now() - interval '1 minute'), (2, 3, now())`,
	}
	for _, s := range stmts {
		if _, err := q.Exec(ctx, s); err != nil {
			t.Fatalf("seed: %v\n%s", err, s)
		}
	}
}

func TestQueryRanked_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2}}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	defer func() { _ = st.Close(ctx) }()

	if err := schema.Apply(ctx, st.PG); err != nil {
		t.Fatalf("schema: %v", err)
	}
	seed(t, ctx, st.PG)

	cs := NewPG().Bind(st.PG)

	// popularity ties break by id desc; hidden and foreign-locale rows excluded
	items, more, err := cs.QueryRanked(ctx, domain.RankedQuery{
		Source: domain.SourceRecipes, Order: domain.OrderPopularity, Locale: "en", Limit: 2,
	})
	if err != nil {
		t.Fatalf("popularity: %v", err)
	}
	if !more || len(items) != 2 || items[0].ID != 7 || items[1].ID != 3 {
		t.Fatalf("page1 = %v more=%v", ids(items), more)
	}
	items, more, err = cs.QueryRanked(ctx, domain.RankedQuery{
		Source: domain.SourceRecipes, Order: domain.OrderPopularity, Locale: "en", Limit: 2,
		Cursor: items[1].CursorFor(domain.OrderPopularity),
	})
	if err != nil {
		t.Fatalf("popularity page2: %v", err)
	}
	if more || len(items) != 2 || items[0].ID != 2 || items[1].ID != 1 {
		t.Fatalf("page2 = %v more=%v", ids(items), more)
	}

	// recency window drops the month-old row
	items, _, err = cs.QueryRanked(ctx, domain.RankedQuery{
		Source: domain.SourceRecipes, Order: domain.OrderPopularity, Locale: "en",
		After: time.Now().Add(-72 * time.Hour), Limit: 10,
	})
	if err != nil {
		t.Fatalf("windowed: %v", err)
	}
	if len(items) != 3 || items[0].ID != 3 {
		t.Fatalf("windowed = %v", ids(items))
	}

	// a time cursor resumes strictly after its row
	items, _, err = cs.QueryRanked(ctx, domain.RankedQuery{Source: domain.SourceRecipes, Order: domain.OrderRecency, Locale: "en", Limit: 1})
	if err != nil || len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("recency first = %v err=%v", ids(items), err)
	}
	next, _, err := cs.QueryRanked(ctx, domain.RankedQuery{
		Source: domain.SourceRecipes, Order: domain.OrderRecency, Locale: "en", Limit: 1,
		Cursor: items[0].CursorFor(domain.OrderRecency),
	})
	if err != nil || len(next) != 1 || next[0].ID != 2 {
		t.Fatalf("recency next = %v err=%v", ids(next), err)
	}

	// hashtag filter
	items, _, err = cs.QueryRanked(ctx, domain.RankedQuery{Source: domain.SourceRecipes, Order: domain.OrderRecency, Hashtag: "pasta", Limit: 10})
	if err != nil || len(items) != 2 || items[0].ID != 2 || items[1].ID != 3 {
		t.Fatalf("hashtag = %v err=%v", ids(items), err)
	}

	// saved items by saver public id
	var saver string
	if err := st.PG.QueryRow(ctx, `SELECT public_id::text FROM users WHERE id = 2`).Scan(&saver); err != nil {
		t.Fatalf("saver ref: %v", err)
	}
	items, _, err = cs.QueryRanked(ctx, domain.RankedQuery{Source: domain.SourceRecipes, Order: domain.OrderSavedAt, SavedByRef: saver, Limit: 10})
	if err != nil || len(items) != 2 || items[0].ID != 3 || items[1].ID != 1 || items[0].SavedAt.IsZero() {
		t.Fatalf("saved = %v err=%v", ids(items), err)
	}
}

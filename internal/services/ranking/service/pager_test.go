package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"potluck/internal/core/cursor"
	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/store"
	"potluck/internal/services/ranking/cache"
	"potluck/internal/services/ranking/domain"
	"potluck/internal/services/ranking/repo"
)

// fakeDB satisfies the constructors; the memory store never touches it
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeDB) Query(context.Context, string, ...any) (store.Rows, error)       { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

var _ repokit.TxRunner = fakeDB{}

func newPager(live domain.ContentStore, c domain.FeedCache, cfg Config) *Pager {
	return &Pager{Cache: c, Live: live, Cfg: cfg.withDefaults()}
}

func build(t *testing.T, mem domain.FeedCache, src domain.ContentStore, at time.Time) {
	t.Helper()
	b := newBuilder(src, mem, Config{})
	b.now = func() time.Time { return at }
	if _, err := b.Rebuild(context.Background(), "en"); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
}

func popularPage(t *testing.T, p *Pager, cur string, limit int) domain.Page {
	t.Helper()
	page, err := p.Page(context.Background(), domain.PageRequest{
		Locale: "en", Category: domain.CategoryPopular, Cursor: cur, Limit: limit,
	})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	return page
}

func TestPage_WalksToExhaustion(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(23), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	var got []int64
	cur := ""
	for range 10 {
		page := popularPage(t, p, cur, 10)
		if page.Path != domain.PathCache {
			t.Fatalf("path = %s", page.Path)
		}
		got = append(got, page.IDs...)
		if !page.HasMore {
			if page.NextCursor != "" {
				t.Fatalf("terminal page carries a cursor")
			}
			break
		}
		cur = page.NextCursor
	}
	if len(got) != 23 || got[0] != 23 || got[22] != 1 {
		t.Fatalf("walked %v", got)
	}
	seen := map[int64]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate %d", id)
		}
		seen[id] = true
	}
}

func TestPage_CursorPinsPreviousBuild(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(23), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	first := popularPage(t, p, "", 10)

	// a new build lands with extra items at the head
	next := corpus(23)
	next.Add(recipe(100, 1000, 0, 0), recipe(101, 999, 0, 0))
	build(t, mem, next, base.Add(time.Minute))

	second := popularPage(t, p, first.NextCursor, 10)
	if second.Path != domain.PathPrevious {
		t.Fatalf("path = %s", second.Path)
	}
	if second.IDs[0] != 13 || second.IDs[9] != 4 {
		t.Fatalf("continued with %v", second.IDs)
	}

	// two builds later the cursor's build is gone; its offset applies to the current build
	build(t, mem, next, base.Add(2*time.Minute))
	third := popularPage(t, p, first.NextCursor, 10)
	if third.Path != domain.PathCache {
		t.Fatalf("path = %s", third.Path)
	}
	if third.IDs[0] != 15 {
		t.Fatalf("best effort offset read %v", third.IDs)
	}
}

// retaining keeps every build it has swapped in, like the redis tier does
type retaining struct {
	*cache.Memory
	builds map[string]*domain.Feed
}

func buildKey(k domain.FeedKey, v uint64) string { return k.String() + ":" + strconv.FormatUint(v, 10) }

func (r *retaining) Replace(ctx context.Context, f domain.Feed) (domain.Feed, bool, error) {
	stored, ok, err := r.Memory.Replace(ctx, f)
	if ok {
		r.builds[buildKey(stored.Key, stored.Version)] = &stored
	}
	return stored, ok, err
}

func (r *retaining) Retained(_ context.Context, k domain.FeedKey, v uint64) *domain.Feed {
	return r.builds[buildKey(k, v)]
}

func TestPage_CursorPagesRetainedBuild(t *testing.T) {
	t.Parallel()

	mem := &retaining{Memory: cache.NewMemory(), builds: map[string]*domain.Feed{}}
	build(t, mem, corpus(23), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	first := popularPage(t, p, "", 10)

	next := corpus(23)
	next.Add(recipe(100, 1000, 0, 0), recipe(101, 999, 0, 0))
	build(t, mem, next, base.Add(time.Minute))
	build(t, mem, next, base.Add(2*time.Minute))

	// two builds later memory has dropped the cursor's build; the retained copy still pages exactly
	second := popularPage(t, p, first.NextCursor, 10)
	if second.Path != domain.PathRetained || second.IDs[0] != 13 || second.IDs[9] != 4 {
		t.Fatalf("second = %+v", second)
	}
	third := popularPage(t, p, second.NextCursor, 10)
	if third.Path != domain.PathRetained || third.HasMore || len(third.IDs) != 3 || third.IDs[2] != 1 {
		t.Fatalf("third = %+v", third)
	}
}

func TestPage_ColdCacheServesLiveRecency(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	p := newPager(corpus(5), mem, Config{})

	first := popularPage(t, p, "", 2)
	if first.Path != domain.PathLive || !first.HasMore {
		t.Fatalf("first = %+v", first)
	}
	if first.IDs[0] != 5 || first.IDs[1] != 4 || first.Refs[0] != "r5" {
		t.Fatalf("live not newest first: %v", first.IDs)
	}

	// the cache warming up must not switch lists under a live cursor
	build(t, mem, corpus(5), base)

	second := popularPage(t, p, first.NextCursor, 2)
	if second.Path != domain.PathLive || second.IDs[0] != 3 || second.IDs[1] != 2 {
		t.Fatalf("second = %+v", second)
	}
	third := popularPage(t, p, second.NextCursor, 2)
	if third.HasMore || len(third.IDs) != 1 || third.IDs[0] != 1 {
		t.Fatalf("third = %+v", third)
	}

	fresh := popularPage(t, p, "", 2)
	if fresh.Path != domain.PathCache {
		t.Fatalf("warm cache not used for a new sequence: %s", fresh.Path)
	}
}

func TestPage_LiveFailureIsDegradedEmpty(t *testing.T) {
	t.Parallel()

	down := repo.NewMemory()
	down.Err = errors.New("db down")
	p := newPager(down, cache.NewMemory(), Config{})

	page := popularPage(t, p, "", 10)
	if page.Path != domain.PathDegraded || page.HasMore || len(page.IDs) != 0 || page.NextCursor != "" {
		t.Fatalf("page = %+v", page)
	}
}

func TestPage_LiveBudgetExhaustedIsDegraded(t *testing.T) {
	t.Parallel()

	p := NewPager(fakeDB{}, corpus(3), cache.NewMemory(), Config{FallbackRPS: 0.001, FallbackWait: 10 * time.Millisecond})

	if page := popularPage(t, p, "", 10); page.Path != domain.PathLive {
		t.Fatalf("first path = %s", page.Path)
	}
	if page := popularPage(t, p, "", 10); page.Path != domain.PathDegraded {
		t.Fatalf("second path = %s", page.Path)
	}
}

func TestPage_ReplayedEndCursorIsEmptyTerminal(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(10), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	key := domain.FeedKey{Locale: "en", Category: domain.CategoryPopular}
	cur, _ := mem.Snapshot(context.Background(), key)
	end := cursor.Encode(key.Scope(), cursor.Position(cur.Version, cur.Len()))

	for range 2 {
		page := popularPage(t, p, end, 5)
		if page.HasMore || len(page.IDs) != 0 || page.NextCursor != "" || page.Path != domain.PathCache {
			t.Fatalf("page = %+v", page)
		}
	}
}

func TestPage_BadCursorRestartsAtFirstPage(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(10), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	trending, err := p.Page(context.Background(), domain.PageRequest{Locale: "en", Category: domain.CategoryTrending, Limit: 3})
	if err != nil {
		t.Fatalf("trending: %v", err)
	}

	for _, c := range []string{"garbage", "!!", trending.NextCursor} {
		page := popularPage(t, p, c, 3)
		if page.IDs[0] != 10 {
			t.Fatalf("cursor %q did not restart: %v", c, page.IDs)
		}
	}
}

func TestPage_ClampsLimit(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(80), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	if n := len(popularPage(t, p, "", 0).IDs); n != 20 {
		t.Fatalf("default = %d", n)
	}
	if n := len(popularPage(t, p, "", 1000).IDs); n != 50 {
		t.Fatalf("max = %d", n)
	}
}

func TestPage_NormalizesLocale(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory()
	build(t, mem, corpus(4), base)
	p := newPager(repo.NewMemory(), mem, Config{})

	page, err := p.Page(context.Background(), domain.PageRequest{Locale: " EN ", Category: domain.CategoryFresh})
	if err != nil || page.Path != domain.PathCache || len(page.IDs) != 4 {
		t.Fatalf("page=%+v err=%v", page, err)
	}
}

func TestPage_UnknownCategoryIsInvalid(t *testing.T) {
	t.Parallel()

	p := newPager(repo.NewMemory(), cache.NewMemory(), Config{})
	_, err := p.Page(context.Background(), domain.PageRequest{Locale: "en", Category: "spicy"})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "potluck/internal/platform/net/http"
	ranking "potluck/internal/services/ranking/domain"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type snapshots map[ranking.FeedKey][2]*ranking.Feed

func (s snapshots) Snapshot(_ context.Context, k ranking.FeedKey) (*ranking.Feed, *ranking.Feed) {
	v := s[k]
	return v[0], v[1]
}

func call[T any](t *testing.T, d Deps, path string) T {
	t.Helper()
	return callStatus[T](t, d, path, stdhttp.StatusOK)
}

func callStatus[T any](t *testing.T, d Deps, path string, want int) T {
	t.Helper()
	m := chi.NewRouter()
	phttp.AdaptChi(m).Route("/meta", func(r phttp.Router) { Register(r, d) })

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/meta"+path, nil))
	if rec.Code != want {
		t.Fatalf("%s status = %d, want %d", path, rec.Code, want)
	}
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestReady_Statuses(t *testing.T) {
	t.Parallel()

	down := pinger{err: errors.New("refused")}
	cases := []struct {
		name string
		deps Deps
		want string
		code int
	}{
		{"all ok", Deps{PG: pinger{}, CH: pinger{}, Redis: pinger{}}, "ok", 200},
		{"optional skipped", Deps{PG: pinger{}}, "ok", 200},
		{"redis down", Deps{PG: pinger{}, Redis: down}, "degraded", 200},
		{"pg missing", Deps{}, "degraded", 200},
		{"pg down", Deps{PG: down, Redis: pinger{}}, "fail", 503},
	}
	for _, tc := range cases {
		got := callStatus[ReadyResponse](t, tc.deps, "/ready", tc.code)
		if got.Status != tc.want {
			t.Fatalf("%s: status = %s checks=%+v", tc.name, got.Status, got.Checks)
		}
		if len(got.Checks) != 3 || got.Checks[0].Name != "pg" {
			t.Fatalf("%s: checks = %+v", tc.name, got.Checks)
		}
	}
}

type slow struct{}

func (slow) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestReady_TimeoutBoundsProbes(t *testing.T) {
	t.Parallel()

	start := time.Now()
	got := call[ReadyResponse](t, Deps{PG: pinger{}, CH: slow{}, ReadyTimeout: 20 * time.Millisecond}, "/ready")
	if time.Since(start) > time.Second {
		t.Fatalf("probe ignored the timeout")
	}
	if got.Status != "degraded" || got.Checks[1].Status != "fail" {
		t.Fatalf("ready = %+v", got)
	}
}

func TestFeed_ReportsVersions(t *testing.T) {
	t.Parallel()

	mixed := ranking.FeedKey{Locale: "en", Category: ranking.CategoryMixed}
	fresh := ranking.FeedKey{Locale: "en", Category: ranking.CategoryFresh}
	snap := snapshots{
		mixed: {
			&ranking.Feed{Key: mixed, Version: 7, BuildID: "b7", StartedAt: time.Now(), IDs: []int64{1, 2}},
			&ranking.Feed{Key: mixed, Version: 6},
		},
	}

	got := call[FeedResponse](t, Deps{Feeds: snap, FeedKeys: []ranking.FeedKey{mixed, fresh}}, "/feed")
	if len(got.Feeds) != 2 || got.Cold != 1 {
		t.Fatalf("feeds = %+v", got)
	}
	m := got.Feeds[0]
	if m.Version != 7 || m.PreviousVersion != 6 || m.Items != 2 || m.BuildID != "b7" {
		t.Fatalf("mixed = %+v", m)
	}
	if got.Feeds[1].Version != 0 {
		t.Fatalf("fresh = %+v", got.Feeds[1])
	}

	empty := call[FeedResponse](t, Deps{}, "/feed")
	if len(empty.Feeds) != 0 {
		t.Fatalf("no cache = %+v", empty)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	d := Deps{Service: "potluck-api", StartedAt: time.Now().Add(-time.Minute)}
	h := call[HealthResponse](t, d, "/health")
	if h.Service != "potluck-api" || h.Uptime < 59 || h.Started == "" {
		t.Fatalf("health = %+v", h)
	}
}

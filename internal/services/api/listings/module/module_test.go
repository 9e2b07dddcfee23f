package module

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	modkit "potluck/internal/modkit"
	"potluck/internal/platform/config"
	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/store"
	ranking "potluck/internal/services/ranking/domain"
	"potluck/internal/services/ranking/repo"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeDB) Query(context.Context, string, ...any) (store.Rows, error)       { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

func content() *repo.Memory {
	now := time.Now()
	return repo.NewMemory(
		repo.Row{Source: ranking.SourceRecipes, Item: ranking.RankableItem{ID: 1, Ref: "a", Locale: "en", CreatedAt: now}},
		repo.Row{
			Source:  ranking.SourceRecipes,
			Item:    ranking.RankableItem{ID: 2, Ref: "b", Locale: "en", CreatedAt: now},
			SavedBy: map[string]time.Time{"user-1": now},
		},
	)
}

func mount(m modkit.Module) *chi.Mux {
	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	return mux
}

func get(mux *chi.Mux, target, bearer string) int {
	req := httptest.NewRequest(stdhttp.MethodGet, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec.Code
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_API_RATE_RPM", "120")
	t.Setenv("CORE_API_JWT_SECRET", "s3cret")
	t.Setenv("CORE_FEED_PAGE_MAX", "30")

	o := FromConfig(config.New())
	if o.RateRPM != 120 || o.JWTSecret != "s3cret" || o.PageMax != 30 || o.PageDefault != 20 || o.DefaultLocale != "en" {
		t.Fatalf("options = %+v", o)
	}
}

func TestModule_RoutesAtRoot(t *testing.T) {
	t.Parallel()

	m := NewWithOptions(modkit.Deps{PG: fakeDB{}}, Options{}, content())
	if m.Name() != "listings" {
		t.Fatalf("name = %q", m.Name())
	}
	mux := mount(m)
	if code := get(mux, "/recipes", ""); code != stdhttp.StatusOK {
		t.Fatalf("recipes status = %d", code)
	}
	if code := get(mux, "/me/saved", ""); code != stdhttp.StatusNotFound {
		t.Fatalf("saved mounted without a secret: %d", code)
	}
}

func TestModule_RateLimited(t *testing.T) {
	t.Parallel()

	mux := mount(NewWithOptions(modkit.Deps{PG: fakeDB{}}, Options{RateRPM: 1}, content()))
	if code := get(mux, "/recipes", ""); code != stdhttp.StatusOK {
		t.Fatalf("first status = %d", code)
	}
	if code := get(mux, "/recipes", ""); code != stdhttp.StatusTooManyRequests {
		t.Fatalf("second status = %d", code)
	}
}

func TestModule_SavedNeedsValidToken(t *testing.T) {
	t.Parallel()

	secret := "s3cret"
	mux := mount(NewWithOptions(modkit.Deps{PG: fakeDB{}}, Options{JWTSecret: secret}, content()))

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if code := get(mux, "/me/saved", ""); code != stdhttp.StatusUnauthorized {
		t.Fatalf("missing token status = %d", code)
	}
	if code := get(mux, "/me/saved", "garbage"); code != stdhttp.StatusUnauthorized {
		t.Fatalf("bad token status = %d", code)
	}
	if code := get(mux, "/me/saved", tok); code != stdhttp.StatusOK {
		t.Fatalf("valid token status = %d", code)
	}
}

func TestModule_Prefix(t *testing.T) {
	t.Parallel()

	m := NewWithOptions(modkit.Deps{PG: fakeDB{}}, Options{}, content(), modkit.WithPrefix("/lists"))
	if code := get(mount(m), "/lists/recipes", ""); code != stdhttp.StatusOK {
		t.Fatalf("prefixed status = %d", code)
	}
}

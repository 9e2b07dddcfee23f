package httpkit

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestQueryHelpers(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/x?limit=12&bad=zz&cursor=%20abc%20", nil)
	if n := QueryInt(r, "limit", 20); n != 12 {
		t.Fatalf("limit = %d", n)
	}
	if n := QueryInt(r, "bad", 20); n != 20 {
		t.Fatalf("bad = %d", n)
	}
	if n := QueryInt(r, "missing", 7); n != 7 {
		t.Fatalf("missing = %d", n)
	}
	if s := QueryString(r, "cursor"); s != "abc" {
		t.Fatalf("cursor = %q", s)
	}
}

func TestPathParam(t *testing.T) {
	t.Parallel()

	rc := chi.NewRouteContext()
	rc.URLParams.Add("tag", "pasta")
	r := httptest.NewRequest("GET", "/hashtags/pasta/recipes", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
	if got := PathParam(r, "tag"); got != "pasta" {
		t.Fatalf("tag = %q", got)
	}
}

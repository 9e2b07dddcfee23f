package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_RejectsOverLimit(t *testing.T) {
	t.Parallel()

	var wrote int
	write := func(w http.ResponseWriter, status int, _ any) {
		wrote = status
		w.WriteHeader(status)
	}
	h := RateLimitByIP(2, write)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))
		want := http.StatusOK
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: status %d want %d", i, rec.Code, want)
		}
	}
	if wrote != http.StatusTooManyRequests {
		t.Fatalf("limit handler wrote %d", wrote)
	}
}

func TestRateLimitByIP_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	h := RateLimitByIP(0, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}

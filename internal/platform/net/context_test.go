package net

import (
	"context"
	"net/http"
	"testing"

	perr "potluck/internal/platform/errors"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if WithUser(ctx, "") != ctx {
		t.Fatalf("blank user wrapped the context")
	}
	if got := UserID(WithUser(ctx, "u-1")); got != "u-1" {
		t.Fatalf("user = %q", got)
	}
	if UserID(ctx) != "" {
		t.Fatalf("empty context has a user")
	}
}

func TestRequestID_ReadsChiKey(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-9")
	if got := RequestID(ctx); got != "req-9" {
		t.Fatalf("request id = %q", got)
	}
}

func TestFail(t *testing.T) {
	t.Parallel()

	status, w := Fail(perr.Newf(perr.ErrorCodeValidation, "limit must be at least 1"), "req-1")
	if status != http.StatusBadRequest || w.StatusCode != status {
		t.Fatalf("status = %d wire = %d", status, w.StatusCode)
	}
	if w.Code != perr.ErrorCodeValidation || w.RequestID != "req-1" || w.Status != "Bad Request" {
		t.Fatalf("wire = %+v", w)
	}
}

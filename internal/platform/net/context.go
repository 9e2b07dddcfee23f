// Package net carries request scoped ids and the error body shared by every transport
package net

import (
	"context"
	"net/http"

	perr "potluck/internal/platform/errors"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type userKey struct{}

// WithUser stores the authenticated user id; a blank id leaves ctx untouched
func WithUser(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID is the authenticated user id or ""
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey{}).(string)
	return v
}

// RequestID is the id chi's RequestID middleware attached, or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// Wire is the error body written for a failed request
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// Fail maps err to its http status and wire body
func Fail(err error, reqID string) (int, Wire) {
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		RequestID:  reqID,
	}
}

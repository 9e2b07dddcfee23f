package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	"potluck/internal/platform/net/http/bind"

	"github.com/go-chi/chi/v5"
)

// Validate validates a DTO filled from query or path params
func Validate(v any) error { return bind.Validate(v) }

// QueryString returns the trimmed query param key
func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// QueryInt returns the query param key as an int, or def when absent or not a number
func QueryInt(r *http.Request, key string, def int) int {
	v := QueryString(r, key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// PathParam returns the named route param
func PathParam(r *http.Request, name string) string { return chi.URLParam(r, name) }

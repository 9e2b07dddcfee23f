package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// CORSOptions narrows go-chi/cors to what the api configures
type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         int
}

// CORS answers preflights for read only browser clients
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}

// Tracing tags each request with an id and the client ip; mount it first
func Tracing() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{chimw.RequestID, chimw.RealIP}
}

// Shaping disables caching, compresses bodies, strips trailing slashes and
// bounds each request to timeout
func Shaping(timeout time.Duration) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chimw.NoCache,
		chimw.Compress(flate.BestSpeed),
		chimw.StripSlashes,
		chimw.Timeout(timeout),
	}
}

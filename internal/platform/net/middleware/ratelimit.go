package middleware

import (
	"net/http"
	"time"

	perr "potluck/internal/platform/errors"
	pnet "potluck/internal/platform/net"

	"github.com/go-chi/httprate"
)

// RateLimitByIP limits each client ip to perMinute requests per minute
// over the limit answers a 429 envelope; perMinute <= 0 disables limiting
func RateLimitByIP(perMinute int, write Writer) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			err := perr.New(perr.ErrorCodeTooManyRequests, "rate limit exceeded")
			status, body := pnet.Fail(err, pnet.RequestID(r.Context()))
			write(w, status, body)
		}),
	)
}

package middleware

import (
	"net/http"

	pnet "potluck/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	Parse(r *http.Request) (userID string, err error)
}

// Writer writes a status and body, phttp.JSON in production
type Writer = func(w http.ResponseWriter, status int, body any)

// Auth rejects requests p cannot resolve and stores the user id on the context
// a nil port lets every request through
func Auth(p AuthPort, write Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Fail(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}

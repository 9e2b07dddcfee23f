package httpkit

import (
	"errors"
	"net/http"
	"strings"

	perrs "potluck/internal/platform/errors"
	pnet "potluck/internal/platform/net"
	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/net/middleware"

	"github.com/golang-jwt/jwt/v5"
)

// TokenFunc turns a raw bearer token into a user id
type TokenFunc func(token string) (userID string, err error)

// Port reads the Authorization header and hands the token to a TokenFunc
type Port struct{ parse TokenFunc }

// NewPortFunc builds a middleware.AuthPort from fn
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse accepts "Bearer <token>" with any casing of the scheme; every failure
// is an unauthorized error that does not say which check failed
func (p *Port) Parse(r *http.Request) (string, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	uid, err := p.parse(raw)
	if err != nil || uid == "" {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, nil
}

// HS256TokenFunc verifies HMAC signed tokens that carry an expiry and
// returns their subject
func HS256TokenFunc(secret []byte) TokenFunc {
	return func(raw string) (string, error) {
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			return "", err
		}
		if claims.Subject == "" {
			return "", errors.New("token has no subject")
		}
		return claims.Subject, nil
	}
}

// Protected mounts fn's routes behind bearer auth
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(middleware.Auth(p, phttp.JSON))
		fn(g)
	})
}

// User is the caller Protected resolved, or an unauthorized error
func User(r *http.Request) (string, error) {
	if uid := pnet.UserID(r.Context()); uid != "" {
		return uid, nil
	}
	return "", perrs.Unauthorizedf("missing bearer token")
}

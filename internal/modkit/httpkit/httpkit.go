// Package httpkit is what modules mount routes with, so they never import the platform http package
package httpkit

import (
	"net/http"
	"time"

	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/net/middleware"
)

// Router is the module facing router
type Router = phttp.Router

// Get mounts a handler returning a payload or an error; the payload becomes
// the envelope's data and the error its status and code
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, phttp.Handle(func(req *http.Request) phttp.Response {
		out, err := fn(req)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	}))
}

// Status lets a Get handler answer data with a status other than 200
func Status(code int, data any) any { return phttp.Response{Status: code, Body: data} }

// CommonStack is the middleware every versioned route runs through,
// outermost first
func CommonStack() []func(http.Handler) http.Handler {
	stack := middleware.Tracing()
	stack = append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.RecoverJSON(phttp.JSON),
		middleware.CORS(middleware.CORSOptions{MaxAge: 300}),
	)
	return append(stack, middleware.Shaping(30*time.Second)...)
}

// MountAPIV1 mounts under /api/v1 with mw applied to that scope only
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/v1", func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}

package modkit

import (
	"net/http"

	"potluck/internal/modkit/httpkit"
	str "potluck/internal/platform/strings"
)

// Option adjusts a module while it is built
type Option func(*Base)

// WithName names the module in logs and the port registry
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithPrefix mounts the module under prefix; "" or "/" mounts at the parent root
func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mw = append(b.mw, mw...) }
}

// WithPorts injects ports owned by another module; the importing module asserts the type
func WithPorts[T any](p T) Option { return func(b *Base) { b.ports = p } }

// WithRoutes mounts extra routes after the module's own
func WithRoutes(fn func(httpkit.Router)) Option { return func(b *Base) { b.extra = fn } }

// Base is the mounting half of an HTTP module; modules embed it and add Ports
type Base struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	ports  any

	routes func(httpkit.Router)
	extra  func(httpkit.Router)
}

// Build applies opts in order, later options win
func Build(opts ...Option) Base {
	var b Base
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Routes sets the module's own route registration
func (b *Base) Routes(fn func(httpkit.Router)) { b.routes = fn }

// Injected returns what WithPorts supplied, nil when nothing was
func (b Base) Injected() any { return b.ports }

// Name panics on an unnamed module
func (b Base) Name() string { return str.MustString(b.name, "module name") }

func (b Base) atRoot() bool { return b.prefix == "" || b.prefix == "/" }

// Prefix is "/" for a module mounted at its parent root
func (b Base) Prefix() string {
	if b.atRoot() {
		return "/"
	}
	return str.MustPrefix(b.prefix)
}

// Middlewares returns a copy of the module middleware
func (b Base) Middlewares() []func(http.Handler) http.Handler {
	return append([]func(http.Handler) http.Handler(nil), b.mw...)
}

// MountRoutes scopes the middleware to the module's own routes
func (b Base) MountRoutes(r httpkit.Router) {
	mount := func(rr httpkit.Router) {
		rr.Use(b.mw...)
		if b.routes != nil {
			b.routes(rr)
		}
		if b.extra != nil {
			b.extra(rr)
		}
	}
	if b.atRoot() {
		r.Group(mount)
		return
	}
	r.Route(b.Prefix(), mount)
}

// Package module mounts the cursor paged content lists
package module

import (
	modkit "potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"
	"potluck/internal/modkit/repokit"
	"potluck/internal/platform/logger"
	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/net/middleware"

	listhttp "potluck/internal/services/api/listings/http"
	listsvc "potluck/internal/services/api/listings/service"
	ranking "potluck/internal/services/ranking/domain"
	rankrepo "potluck/internal/services/ranking/repo"
)

// Ports exported by the listings module
type Ports struct {
	Lists *listsvc.Service
}

// Module serves the recipe, hashtag, user log and saved lists
// its routes sit at the api root unless a prefix is given
type Module struct {
	modkit.Base
	svc *listsvc.Service
}

// New builds the module from deps.Cfg over the postgres content store
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), rankrepo.NewPG(), opts...)
}

// NewWithOptions builds the module with explicit options and content store binder
func NewWithOptions(deps modkit.Deps, o Options, binder repokit.Binder[ranking.ContentStore], opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("listings"),
		modkit.WithMiddlewares(middleware.RateLimitByIP(o.RateRPM, phttp.JSON)),
	}, opts...)...)

	m := &Module{
		Base: b,
		svc: listsvc.New(deps.PG, binder, listsvc.Config{
			DefaultLocale: o.DefaultLocale,
			PageDefault:   o.PageDefault,
			PageMax:       o.PageMax,
		}),
	}

	var auth middleware.AuthPort
	if o.JWTSecret != "" {
		auth = httpkit.NewPortFunc(httpkit.HS256TokenFunc([]byte(o.JWTSecret)))
	} else {
		logger.Named("listings").Warn().Msg("CORE_API_JWT_SECRET not set; /me/saved is not mounted")
	}
	m.Routes(func(r httpkit.Router) { listhttp.Register(r, m.svc, auth) })
	return m
}

// Ports exposes the list service
func (m *Module) Ports() any { return Ports{Lists: m.svc} }

// Package api composes the feed, listings and meta modules into the public HTTP surface
package api

import (
	"net/http"

	"potluck/internal/platform/config"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/metrics"
	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/net/middleware"
	"potluck/internal/platform/store"

	"potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"
	"potluck/internal/modkit/module"
	"potluck/internal/modkit/swaggerkit"

	feedmod "potluck/internal/services/api/feed/module"
	listmod "potluck/internal/services/api/listings/module"
	metamod "potluck/internal/services/api/meta/module"
	rankmod "potluck/internal/services/ranking/module"
)

// Options controls what Mount exposes besides the versioned routes
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool

	// Ranking is shared with an in process scheduler; nil builds one from Config
	Ranking *rankmod.Module
}

// Deps hands the opened backends to the modules
func Deps(cfg config.Conf, s *store.Store) modkit.Deps {
	return modkit.Deps{Cfg: cfg, PG: s.PG, CH: s.CH, Redis: s.Redis}
}

// documented is the GET surface listed in /api/docs
var documented = []swaggerkit.Op{
	{Path: "/feed", Tag: "Feed", Summary: "One page of a ranked feed"},
	{Path: "/recipes", Tag: "Listings", Summary: "Recipes by recency or popularity"},
	{Path: "/hashtags/{tag}/recipes", Tag: "Listings", Summary: "Recipes carrying a hashtag"},
	{Path: "/users/{userRef}/logs", Tag: "Listings", Summary: "A user's cooking logs"},
	{Path: "/me/saved", Tag: "Listings", Summary: "The caller's saved recipes", Auth: true},
	{Path: "/meta/health", Tag: "Meta", Summary: "Liveness"},
	{Path: "/meta/ready", Tag: "Meta", Summary: "Backend readiness"},
	{Path: "/meta/version", Tag: "Meta", Summary: "Build info"},
	{Path: "/meta/feed", Tag: "Meta", Summary: "Cached feed versions"},
}

// Mount wires every module under /api/v1 plus the optional docs, profiler and metrics
func Mount(r phttp.Router, opt Options) {
	log := opt.Logger
	if log == nil {
		log = logger.Get()
	}
	deps := Deps(opt.Config, opt.Store)

	ranking := opt.Ranking
	if ranking == nil {
		ranking = rankmod.New(deps)
	}
	rp := module.MustPortsOf[rankmod.Ports](ranking)
	perMinute := opt.Config.Prefix("CORE_API_").MayInt("RATE_RPM", 0)

	mods := []module.Module{
		ranking,
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Feeds: rp.Cache, Keys: rp.Keys})),
		feedmod.New(deps,
			modkit.WithPorts(feedmod.Ports{Pager: rp.Pager}),
			modkit.WithMiddlewares(middleware.RateLimitByIP(perMinute, phttp.JSON)),
		),
		listmod.New(deps),
	}

	stack := httpkit.CommonStack()
	if opt.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
		stack = append([]func(http.Handler) http.Handler{metrics.Instrument}, stack...)
	}

	if err := swaggerkit.Mount(r, swaggerkit.Options{
		Enabled: opt.EnableSwagger,
		Title:   "Potluck API",
		Ops:     documented,
	}); err != nil {
		log.Warn().Err(err).Msg("api docs disabled")
	}
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, stack, func(v1 httpkit.Router) {
		for _, m := range mods {
			// ranking mounts nothing; registering it lets other modules resolve its ports
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(v1)
		}
	})
}

// Package module wires the ranking service as a modkit.Module
package module

import (
	"context"

	"potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"
	modreg "potluck/internal/modkit/module"
	"potluck/internal/modkit/repokit"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/supervise"

	"potluck/internal/services/ranking/cache"
	"potluck/internal/services/ranking/domain"
	"potluck/internal/services/ranking/guardrails"
	"potluck/internal/services/ranking/repo"
	"potluck/internal/services/ranking/service"

	"github.com/thejerf/suture/v4"
)

// Ports exported by the ranking module
type Ports struct {
	Builder domain.BuilderPort
	Pager   domain.PagerPort
	Cache   *cache.Tiered
	Keys    []domain.FeedKey
}

// Module implements modkit.Module for ranking
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the ranking module from deps.Cfg
func New(deps modkit.Deps) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg))
}

// NewWithOptions constructs the ranking module with explicit options
func NewWithOptions(deps modkit.Deps, opts Options) *Module {
	var rc *cache.Redis
	if deps.Redis != nil {
		rc = cache.NewRedis(deps.Redis, opts.Retention)
	}
	tiers := cache.NewTiered(cache.NewMemory(), rc)

	var binder repokit.Binder[domain.ContentStore] = repo.NewPG()

	var lease guardrails.LeaseFunc
	if opts.Service.EnableLeases {
		lease = guardrails.MakeFeedLease(deps.PG)
	}

	b := service.NewBuilder(deps.PG, binder, tiers, opts.Service, lease)
	p := service.NewPager(deps.PG, binder, tiers, opts.Service)

	return &Module{
		deps: deps,
		opts: opts,
		ports: Ports{
			Builder: b,
			Pager:   p,
			Cache:   tiers,
			Keys:    b.Cfg.Keys(),
		},
	}
}

// Name returns the module name
func (m *Module) Name() string { return "ranking" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: feeds are served by the api feed module
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Scheduler rebuilds every locale now and then every Interval
func (m *Module) Scheduler() suture.Service {
	return &supervise.Periodic{
		Name:  "feed-scheduler",
		Every: m.opts.Interval,
		Run:   m.ports.Builder.RebuildAll,
	}
}

// Syncer pulls newer redis builds into memory; nil when redis is off or syncing is disabled
func (m *Module) Syncer() suture.Service {
	if m.deps.Redis == nil || m.opts.SyncEvery <= 0 {
		return nil
	}
	return &supervise.Periodic{
		Name:      "feed-syncer",
		Every:     m.opts.SyncEvery,
		SkipFirst: true,
		Run: func(ctx context.Context) error {
			n, err := m.ports.Cache.Sync(ctx, m.ports.Keys)
			if n > 0 {
				logger.C(ctx).Debug().Int("pulled", n).Msg("feed cache: synced from redis")
			}
			return err
		},
	}
}

// Register convenience: allow others to resolve our ports via registry
func Register(deps modkit.Deps) *Module {
	m := New(deps)
	modreg.Register(m.Name(), m.ports)
	return m
}

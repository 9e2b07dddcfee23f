// Package module wires the score recompute service as a modkit.Module
package module

import (
	"context"

	"potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/supervise"

	"potluck/internal/services/scores/domain"
	"potluck/internal/services/scores/repo"
	"potluck/internal/services/scores/service"

	"github.com/thejerf/suture/v4"
)

// Ports exported by the scores module
type Ports struct {
	Recompute domain.RecomputePort
}

// Module implements modkit.Module for scores
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the scores module from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var views domain.ViewSource
	if opts.ViewsFromCH {
		if deps.CH == nil {
			logger.Named("scores").Warn().Msg("CORE_SCORES_VIEWS_FROM_CH set without clickhouse; using stored view counts")
		} else {
			views = repo.NewCHViews(deps.CH)
		}
	}

	svc := service.New(deps.PG, repo.NewPG(), views, service.Config{
		BatchSize:  opts.BatchSize,
		SaveWeight: opts.SaveWeight,
	})
	return &Module{opts: opts, ports: Ports{Recompute: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "scores" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: scores has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Scheduler recomputes scores now and then every Interval
func (m *Module) Scheduler() suture.Service {
	return &supervise.Periodic{
		Name:  "score-scheduler",
		Every: m.opts.Interval,
		Run: func(ctx context.Context) error {
			_, err := m.ports.Recompute.RecomputeAll(ctx)
			return err
		},
	}
}

// @title         Potluck API
// @version       0.1.0
// @description   Ranked feeds and cursor-paged content lists

// Command potluck-api serves the feed and listing routes; with
// CORE_API_SCHEDULER on it also rebuilds feeds in process
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"potluck/internal/platform/config"
	"potluck/internal/platform/logger"
	phttp "potluck/internal/platform/net/http"
	"potluck/internal/platform/store"
	"potluck/internal/platform/supervise"

	"potluck/internal/services/api"
	rankmod "potluck/internal/services/ranking/module"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Get().Error().Err(err).Msg("potluck-api stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	root := config.New()
	httpCfg := root.Prefix("CORE_API_")
	log := logger.Get()

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "potluck-api"), store.WithLogger(*log))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	ranking := rankmod.New(api.Deps(root, st))
	srv := phttp.NewServer(httpCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         log,
		EnableSwagger:  httpCfg.MayBool("SWAGGER", true),
		EnableProfiler: httpCfg.MayBool("PROFILER", false),
		EnableMetrics:  httpCfg.MayBool("METRICS", true),
		Ranking:        ranking,
	})

	tree := supervise.New("potluck-api", supervise.Config{})
	tree.Add(&supervise.HTTP{Server: srv})
	if httpCfg.MayBool("SCHEDULER", false) {
		tree.Add(ranking.Scheduler())
		log.Info().Msg("feed scheduler running in process")
	}
	if syncer := ranking.Syncer(); syncer != nil {
		tree.Add(syncer)
	}
	log.Info().Str("addr", srv.Addr()).Msg("potluck-api listening")
	return tree.Serve(ctx)
}

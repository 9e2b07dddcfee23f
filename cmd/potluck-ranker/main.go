package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"potluck/internal/modkit"
	"potluck/internal/modkit/module"
	"potluck/internal/platform/config"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/store"
	"potluck/internal/platform/store/schema"
	"potluck/internal/platform/supervise"

	rankmod "potluck/internal/services/ranking/module"
	scoremod "potluck/internal/services/scores/module"
)

func main() {
	var (
		fMode   = flag.String("mode", "worker", "ranker mode: worker | rebuild | scores | migrate")
		fLocale = flag.String("locale", "", "in rebuild mode, rebuild only this locale (default: every CORE_FEED_LOCALES entry)")
	)
	flag.Parse()

	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "potluck-ranker"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Guard(ctx); err != nil {
		l.Warn().Err(err).Msg("store guard: a backend is not answering")
	}

	// Shared deps
	deps := modkit.Deps{
		Cfg:   root,
		PG:    st.PG,
		CH:    st.CH,
		Redis: st.Redis,
		Log:   *l,
	}

	if *fMode == "migrate" {
		if err := schema.Apply(ctx, st.PG); err != nil {
			l.Fatal().Err(err).Msg("schema apply failed")
		}
		l.Info().Msg("schema applied")
		return
	}

	if st.Redis == nil && *fMode != "scores" {
		l.Warn().Msg("SERVICE_REDIS_ENABLED is off; rebuilt feeds stay in this process and API replicas will not see them")
	}

	ranking := rankmod.Register(deps)
	scores := scoremod.New(deps)
	module.Register(scores.Name(), scores.Ports())

	switch *fMode {
	case "worker":
		tree := supervise.New("potluck-ranker", supervise.Config{})
		tree.Add(scores.Scheduler())
		tree.Add(ranking.Scheduler())
		if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Fatal().Err(err).Msg("ranker supervisor stopped")
		}

	case "rebuild":
		b := module.MustLookup[rankmod.Ports](ranking.Name()).Builder
		if *fLocale != "" {
			rep, err := b.Rebuild(ctx, *fLocale)
			if err != nil {
				l.Fatal().Err(err).Str("locale", *fLocale).Msg("feed rebuild failed")
			}
			l.Info().Str("locale", rep.Locale).Interface("versions", rep.Versions).Strs("failed", rep.Failed).Msg("feed rebuild done")
			return
		}
		if err := b.RebuildAll(ctx); err != nil {
			l.Fatal().Err(err).Msg("feed rebuild failed")
		}

	case "scores":
		rep, err := module.MustLookup[scoremod.Ports](scores.Name()).Recompute.RecomputeAll(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("score recompute failed")
		}
		l.Info().
			Int64("rows", rep.Rows).
			Int("batches", rep.Batches).
			Int("failed", rep.Failed).
			Int64("elapsed_ms", rep.ElapsedMS).
			Msg("score recompute done")

	default:
		l.Fatal().Str("mode", *fMode).Msg("unknown -mode (want worker | rebuild | scores | migrate)")
	}
}

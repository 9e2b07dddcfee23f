package service

import (
	"context"
	"errors"
	"time"

	"potluck/internal/core/mixer"
	"potluck/internal/core/normalize"
	"potluck/internal/core/scoring"
	"potluck/internal/modkit/repokit"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/metrics"
	"potluck/internal/services/ranking/domain"
	"potluck/internal/services/ranking/guardrails"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Builder rebuilds the cached feeds of a locale from fresh candidate pools
type Builder struct {
	Store domain.ContentStore
	Cache domain.FeedCache
	Cfg   Config

	// Lease wraps a locale rebuild in a cross-process lock when leases are enabled
	Lease guardrails.LeaseFunc

	now func() time.Time
}

var _ domain.BuilderPort = (*Builder)(nil)

// NewBuilder binds the content store once and guards it with a breaker
func NewBuilder(
	db repokit.TxRunner,
	binder repokit.Binder[domain.ContentStore],
	cache domain.FeedCache,
	cfg Config,
	lease guardrails.LeaseFunc,
) *Builder {
	if db == nil {
		panic("ranking.Builder requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ranking.Builder requires a non nil ContentStore binder")
	}
	if cache == nil {
		panic("ranking.Builder requires a non nil FeedCache")
	}
	return &Builder{
		Store: NewBreakerStore("feed-build", repokit.MustBind(binder, db), BreakerConfig{}),
		Cache: cache,
		Cfg:   cfg.withDefaults(),
		Lease: lease,
		now:   time.Now,
	}
}

// pool is one criterion's build outcome
type pool struct {
	name  string
	items []domain.RankableItem
	err   error
}

// RebuildAll rebuilds every configured locale in turn
func (b *Builder) RebuildAll(ctx context.Context) error {
	var errs []error
	for _, l := range b.Cfg.Locales {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := b.Rebuild(ctx, l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rebuild builds every category of locale and swaps each complete feed in
// the prior feeds stay live when the build is discarded or every pool failed
func (b *Builder) Rebuild(ctx context.Context, locale string) (domain.BuildReport, error) {
	locale = normalize.Locale(locale, b.Cfg.DefaultLocale)
	log := logger.C(ctx).With().Str("mod", "ranking").Str("locale", locale).Logger()

	if b.Lease == nil || !b.Cfg.EnableLeases {
		return b.rebuild(ctx, locale)
	}

	var rep domain.BuildReport
	err := b.Lease(ctx, locale, func(ctx context.Context) error {
		var err error
		rep, err = b.rebuild(ctx, locale)
		return err
	})
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		log.Debug().Msg("feed rebuild: lease not acquired; clean skip")
		metrics.FeedRebuildTotal.WithLabelValues(locale, "skipped").Inc()
		return domain.BuildReport{Locale: locale}, nil
	}
	return rep, err
}

func (b *Builder) rebuild(ctx context.Context, locale string) (domain.BuildReport, error) {
	started := b.now().UTC()
	rep := domain.BuildReport{
		Locale:   locale,
		BuildID:  uuid.NewString(),
		Pools:    map[string]int{},
		Versions: map[domain.Category]uint64{},
	}
	log := logger.C(ctx).With().Str("mod", "ranking").Str("locale", locale).Str("build", rep.BuildID).Logger()
	log.Info().Msg("feed rebuild: start")

	ctx, cancel := context.WithTimeout(ctx, b.Cfg.BuildTimeout)
	defer cancel()

	finish := func(result string, err error) (domain.BuildReport, error) {
		d := b.now().Sub(started)
		rep.ElapsedMS = d.Milliseconds()
		metrics.RecordRebuild(locale, result, d)
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("result", result).
			Int64("elapsed_ms", rep.ElapsedMS).
			Interface("pools", rep.Pools).
			Strs("failed", rep.Failed).
			Interface("versions", rep.Versions).
			Msg("feed rebuild: finish")
		return rep, err
	}

	pools := b.buildPools(ctx, locale, started)

	if ctx.Err() != nil {
		return finish("discarded", domain.ErrBuildDiscarded)
	}

	items := map[string][]domain.RankableItem{}
	for _, p := range pools {
		if p.err != nil {
			rep.Failed = append(rep.Failed, p.name)
			continue
		}
		items[p.name] = p.items
		rep.Pools[p.name] = len(p.items)
	}
	if len(items) == 0 {
		return finish("failed", domain.ErrNoPools)
	}

	feeds := b.assemble(locale, started, rep.BuildID, items, &rep)

	// last chance to discard; past this point every feed is swapped
	if ctx.Err() != nil {
		return finish("discarded", domain.ErrBuildDiscarded)
	}
	swapCtx := context.WithoutCancel(ctx)
	for _, f := range feeds {
		stored, ok, err := b.Cache.Replace(swapCtx, f)
		if err != nil {
			log.Error().Err(err).Str("category", string(f.Key.Category)).Msg("feed rebuild: replace failed")
			rep.Skipped = append(rep.Skipped, f.Key.Category)
			continue
		}
		if !ok {
			log.Debug().Str("category", string(f.Key.Category)).Uint64("live_version", stored.Version).Msg("feed rebuild: newer build already live; skipped")
			rep.Skipped = append(rep.Skipped, f.Key.Category)
			continue
		}
		rep.Versions[f.Key.Category] = stored.Version
		metrics.SetCacheVersion(locale, string(f.Key.Category), stored.Version)
	}

	if len(rep.Failed) > 0 {
		return finish("partial", nil)
	}
	return finish("ok", nil)
}

// errGateSource marks a compound pool whose threshold source pool failed
var errGateSource = errors.New("ranking: threshold source pool failed")

// buildPools builds the single criterion pools, resolves the compound gates
// from them, then builds the compound pools
func (b *Builder) buildPools(ctx context.Context, locale string, now time.Time) []pool {
	var single, compound []domain.Criterion
	for _, c := range b.Cfg.Criteria() {
		if c.Compound() {
			compound = append(compound, c)
		} else {
			single = append(single, c)
		}
	}
	out := b.queryPools(ctx, locale, now, single)

	gs := b.gates(out)
	ready := compound[:0]
	for _, c := range compound {
		c, empty, err := gs.apply(c)
		switch {
		case err != nil:
			logger.C(ctx).Warn().Err(err).Str("criterion", c.Name).Str("locale", locale).Msg("feed rebuild: pool failed")
			metrics.RecordPool(c.Name, 0, err)
			out = append(out, pool{name: c.Name, err: err})
		case empty:
			// nothing scores above zero, so nothing passes the gate
			metrics.RecordPool(c.Name, 0, nil)
			out = append(out, pool{name: c.Name})
		default:
			ready = append(ready, c)
		}
	}
	return append(out, b.queryPools(ctx, locale, now, ready)...)
}

// queryPools queries crits concurrently; a failing criterion yields an empty, failed pool
func (b *Builder) queryPools(ctx context.Context, locale string, now time.Time, crits []domain.Criterion) []pool {
	out := make([]pool, len(crits))

	var g errgroup.Group
	for i, c := range crits {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, b.Cfg.PoolTimeout)
			defer cancel()

			items, _, err := b.Store.QueryRanked(pctx, c.Query(locale, now, b.Cfg.poolDepth(c.Name)))
			if err != nil {
				logger.C(ctx).Warn().Err(err).Str("criterion", c.Name).Str("locale", locale).Msg("feed rebuild: pool failed")
				items = nil
			}
			metrics.RecordPool(c.Name, len(items), err)
			out[i] = pool{name: c.Name, items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// gate is one resolved threshold; empty means no item can pass it
type gate struct {
	min   float64
	empty bool
	err   error
}

type gates struct{ popularity, controversy gate }

// gates pins configured thresholds and derives the rest from this build's
// popular and controversial pools
func (b *Builder) gates(pools []pool) gates {
	byName := make(map[string]pool, len(pools))
	for _, p := range pools {
		byName[p.name] = p
	}
	derive := func(fixed float64, src string, score func(domain.RankableItem) float64) gate {
		if fixed > 0 {
			return gate{min: fixed}
		}
		p, ok := byName[src]
		if !ok || p.err != nil {
			return gate{err: errGateSource}
		}
		scores := make([]float64, len(p.items))
		for i, it := range p.items {
			scores[i] = score(it)
		}
		v, ok := scoring.Percentile(scores, b.Cfg.GatePercentile)
		return gate{min: v, empty: !ok}
	}
	return gates{
		popularity: derive(b.Cfg.MinPopularity, domain.CriterionPopular,
			func(it domain.RankableItem) float64 { return it.Popularity }),
		controversy: derive(b.Cfg.MinControversy, domain.CriterionControversial,
			func(it domain.RankableItem) float64 { return it.Controversy }),
	}
}

// apply fills the thresholds c gates on
func (g gates) apply(c domain.Criterion) (domain.Criterion, bool, error) {
	empty := false
	for _, x := range []struct {
		on  bool
		g   gate
		min *float64
	}{
		{c.GatePopularity, g.popularity, &c.MinPopularity},
		{c.GateControversy, g.controversy, &c.MinControversy},
	} {
		if !x.on {
			continue
		}
		if x.g.err != nil {
			return c, false, x.g.err
		}
		*x.min = x.g.min
		empty = empty || x.g.empty
	}
	return c, empty, nil
}

// assemble turns pools into one complete feed per category
// a single criterion category whose pool failed is left out so its prior feed stays live
func (b *Builder) assemble(locale string, started time.Time, buildID string, items map[string][]domain.RankableItem, rep *domain.BuildReport) []domain.Feed {
	refs := map[int64]string{}
	heads := make(map[string][]int64, len(items))
	for name, list := range items {
		ids := make([]int64, 0, min(len(list), b.Cfg.MixDepth))
		for i, it := range list {
			refs[it.ID] = it.Ref
			if i < b.Cfg.MixDepth {
				ids = append(ids, it.ID)
			}
		}
		heads[name] = ids
	}

	feeds := make([]domain.Feed, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		var ids []int64
		if cat == domain.CategoryMixed {
			ids = mixer.Mix(b.Cfg.Pattern, heads, b.Cfg.MixMax)
		} else {
			list, ok := items[domain.CategoryCriterion[cat]]
			if !ok {
				rep.Skipped = append(rep.Skipped, cat)
				continue
			}
			n := min(len(list), b.Cfg.CategoryCap)
			ids = make([]int64, n)
			for i := range n {
				ids[i] = list[i].ID
			}
		}

		feedRefs := make([]string, len(ids))
		for i, id := range ids {
			feedRefs[i] = refs[id]
		}
		feeds = append(feeds, domain.Feed{
			Key:       domain.FeedKey{Locale: locale, Category: cat},
			BuildID:   buildID,
			StartedAt: started,
			IDs:       ids,
			Refs:      feedRefs,
		})
	}
	return feeds
}

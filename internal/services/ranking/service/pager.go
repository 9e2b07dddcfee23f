package service

import (
	"context"

	"potluck/internal/core/cursor"
	"potluck/internal/core/normalize"
	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/metrics"
	"potluck/internal/services/ranking/domain"
	"potluck/internal/services/ranking/repo"

	"golang.org/x/time/rate"
)

// Pager serves feed pages from the cache, or live from the content store when the cache is cold
type Pager struct {
	Cache domain.FeedCache
	Live  domain.ContentStore
	Cfg   Config

	// limiter budgets live fallback queries; nil is unlimited
	limiter *rate.Limiter
}

var _ domain.PagerPort = (*Pager)(nil)

// NewPager binds the live content store once and guards it with a breaker
func NewPager(
	db repokit.TxRunner,
	binder repokit.Binder[domain.ContentStore],
	cache domain.FeedCache,
	cfg Config,
) *Pager {
	if db == nil {
		panic("ranking.Pager requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ranking.Pager requires a non nil ContentStore binder")
	}
	if cache == nil {
		panic("ranking.Pager requires a non nil FeedCache")
	}
	cfg = cfg.withDefaults()
	p := &Pager{
		Cache: cache,
		Live:  NewBreakerStore("feed-live", repokit.MustBind(binder, db), BreakerConfig{}),
		Cfg:   cfg,
	}
	if cfg.FallbackRPS > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.FallbackRPS), max(1, int(cfg.FallbackRPS)))
	}
	return p
}

// Page returns one page of the (locale, category) feed
//
// A position cursor pages the build it was minted against while that build is
// current, previous or still retained by the cache; any other version is read as
// an offset into the current build. A live cursor keeps paging the live list even
// once the cache warms, so a sequence never switches lists mid-way. Malformed
// cursors restart at page one.
func (p *Pager) Page(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	if !req.Category.Valid() {
		return domain.Page{}, perr.Newf(perr.ErrorCodeValidation, "unknown category %q", req.Category)
	}
	key := domain.FeedKey{Locale: normalize.Locale(req.Locale, p.Cfg.DefaultLocale), Category: req.Category}
	limit := p.Cfg.clampLimit(req.Limit)

	var page domain.Page
	cur, prev := p.Cache.Snapshot(ctx, key)

	if c, ok := cursor.Decode(key.LiveScope(), req.Cursor, cursor.KindTime); ok {
		page = p.live(ctx, key, c, limit)
	} else if c, ok := cursor.Decode(key.Scope(), req.Cursor, cursor.KindPosition); ok && cur != nil {
		feed, path := p.minted(ctx, key, c.Version(), cur, prev)
		page = slice(key, feed, c.Offset(), limit, path)
	} else if cur != nil {
		page = slice(key, cur, 0, limit, domain.PathCache)
	} else {
		page = p.live(ctx, key, cursor.Cursor{}, limit)
	}

	metrics.RecordPage(string(key.Category), page.Path)
	return page, nil
}

// minted picks the build a position cursor of version v was minted against,
// falling back to the current build once v is no longer retained
func (p *Pager) minted(ctx context.Context, key domain.FeedKey, v uint64, cur, prev *domain.Feed) (*domain.Feed, string) {
	switch {
	case v == cur.Version:
		return cur, domain.PathCache
	case prev != nil && v == prev.Version:
		return prev, domain.PathPrevious
	}
	if r, ok := p.Cache.(domain.RetainedFeeds); ok {
		if f := r.Retained(ctx, key, v); f != nil {
			return f, domain.PathRetained
		}
	}
	return cur, domain.PathCache
}

// slice cuts limit items of f at offset; an offset at or past the end is a terminal empty page
func slice(key domain.FeedKey, f *domain.Feed, offset, limit int, path string) domain.Page {
	n := f.Len()
	if offset >= n {
		return domain.Page{IDs: []int64{}, Refs: []string{}, Path: path}
	}
	end := min(offset+limit, n)
	page := domain.Page{
		IDs:     f.IDs[offset:end:end],
		Refs:    f.Refs[offset:end:end],
		HasMore: end < n,
		Path:    path,
	}
	if page.HasMore {
		page.NextCursor = cursor.Encode(key.Scope(), cursor.Position(f.Version, end))
	}
	return page
}

// live pages the recency list straight from the store
// any failure yields a terminal empty page; feed reads never error
func (p *Pager) live(ctx context.Context, key domain.FeedKey, after cursor.Cursor, limit int) domain.Page {
	log := logger.C(ctx).With().Str("feed", key.String()).Logger()
	degraded := domain.Page{IDs: []int64{}, Refs: []string{}, Path: domain.PathDegraded}

	if p.limiter != nil {
		wctx, cancel := context.WithTimeout(ctx, p.Cfg.FallbackWait)
		err := p.limiter.Wait(wctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("feed page: live fallback over budget")
			return degraded
		}
	}

	items, more, err := repo.QueryByRecency(ctx, p.Live, key.Locale, after, limit)
	if err != nil {
		log.Error().Err(err).Msg("feed page: live fallback failed")
		return degraded
	}
	if after.IsZero() {
		log.Info().Msg("feed page: cache cold; serving live")
	}

	page := domain.Page{
		IDs:     make([]int64, len(items)),
		Refs:    make([]string, len(items)),
		HasMore: more && len(items) > 0,
		Path:    domain.PathLive,
	}
	for i, it := range items {
		page.IDs[i] = it.ID
		page.Refs[i] = it.Ref
	}
	if page.HasMore {
		page.NextCursor = cursor.Encode(key.LiveScope(), items[len(items)-1].CursorFor(domain.OrderRecency))
	}
	return page
}

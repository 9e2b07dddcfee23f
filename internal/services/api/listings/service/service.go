// Package service pages live content lists straight from the content store
package service

import (
	"context"
	"strconv"

	"potluck/internal/core/cursor"
	"potluck/internal/core/normalize"
	"potluck/internal/modkit/repokit"
	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/logger"
	"potluck/internal/services/api/listings/domain"
	ranking "potluck/internal/services/ranking/domain"
	ranksvc "potluck/internal/services/ranking/service"
)

// Config bounds list pages
type Config struct {
	DefaultLocale string
	PageDefault   int
	PageMax       int
}

func (c Config) withDefaults() Config {
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	if c.PageMax <= 0 {
		c.PageMax = 50
	}
	if c.PageDefault <= 0 || c.PageDefault > c.PageMax {
		c.PageDefault = min(20, c.PageMax)
	}
	return c
}

func (c Config) clamp(n int) int {
	if n <= 0 {
		return c.PageDefault
	}
	return min(n, c.PageMax)
}

// Service implements domain.ServicePort
type Service struct {
	Store ranking.ContentStore
	Cfg   Config
}

var _ domain.ServicePort = (*Service)(nil)

var sortOrders = map[string]ranking.Order{
	domain.SortRecent:        ranking.OrderRecency,
	domain.SortPopular:       ranking.OrderPopularity,
	domain.SortControversial: ranking.OrderControversy,
	domain.SortComments:      ranking.OrderComments,
	domain.SortSaves:         ranking.OrderSaves,
}

// New binds the content store once and guards it with a breaker
func New(db repokit.TxRunner, binder repokit.Binder[ranking.ContentStore], cfg Config) *Service {
	if db == nil {
		panic("listings.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("listings.Service requires a non nil ContentStore binder")
	}
	return &Service{
		Store: ranksvc.NewBreakerStore("listings", repokit.MustBind(binder, db), ranksvc.BreakerConfig{}),
		Cfg:   cfg.withDefaults(),
	}
}

// Recipes pages recipes of a locale by the requested sort
func (s *Service) Recipes(ctx context.Context, in domain.RecipesInput) (domain.ListPage, error) {
	sort := in.Sort
	if sort == "" {
		sort = domain.SortRecent
	}
	order, ok := sortOrders[sort]
	if !ok {
		return domain.ListPage{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "unknown sort %q", in.Sort), "sort")
	}
	locale := normalize.Locale(in.Locale, s.Cfg.DefaultLocale)
	q := ranking.RankedQuery{Source: ranking.SourceRecipes, Order: order, Locale: locale}
	return s.page(ctx, "list:recipes:"+sort+":"+locale, q, in.PageInput)
}

// HashtagRecipes pages recipes carrying a hashtag, newest first
func (s *Service) HashtagRecipes(ctx context.Context, in domain.HashtagInput) (domain.ListPage, error) {
	tag := normalize.Tag(in.Tag)
	if tag == "" {
		return domain.ListPage{}, perr.WithField(perr.New(perr.ErrorCodeValidation, "hashtag is empty"), "tag")
	}
	q := ranking.RankedQuery{Source: ranking.SourceRecipes, Order: ranking.OrderRecency, Hashtag: tag}
	return s.page(ctx, "list:hashtag:"+tag, q, in.PageInput)
}

// UserLogs pages a user's cooking logs newest first, optionally bounded by rating
func (s *Service) UserLogs(ctx context.Context, in domain.UserLogsInput) (domain.ListPage, error) {
	q := ranking.RankedQuery{
		Source:    ranking.SourceLogs,
		Order:     ranking.OrderRecency,
		AuthorRef: in.UserRef,
		RatingMin: in.MinRating,
		RatingMax: in.MaxRating,
	}
	scope := "list:user-logs:" + in.UserRef + ":" + strconv.Itoa(in.MinRating) + "-" + strconv.Itoa(in.MaxRating)
	return s.page(ctx, scope, q, in.PageInput)
}

// Saved pages the recipes a user saved, most recently saved first
func (s *Service) Saved(ctx context.Context, in domain.SavedInput) (domain.ListPage, error) {
	if in.UserRef == "" {
		return domain.ListPage{}, perr.Unauthorizedf("saved items require a user")
	}
	q := ranking.RankedQuery{Source: ranking.SourceRecipes, Order: ranking.OrderSavedAt, SavedByRef: in.UserRef}
	return s.page(ctx, "list:saved:"+in.UserRef, q, in.PageInput)
}

// page runs one keyset page of q; a cursor minted for another scope or order restarts the list
func (s *Service) page(ctx context.Context, scope string, q ranking.RankedQuery, in domain.PageInput) (domain.ListPage, error) {
	q.Limit = s.Cfg.clamp(in.Limit)
	if c, ok := cursor.Decode(scope, in.Cursor, q.Order.Kind()); ok {
		q.Cursor = c
	} else if in.Cursor != "" {
		logger.C(ctx).Debug().Str("scope", scope).Msg("list page: foreign or malformed cursor; first page")
	}

	items, more, err := s.Store.QueryRanked(ctx, q)
	if err != nil {
		return domain.ListPage{}, err
	}

	out := domain.ListPage{IDs: make([]string, len(items)), HasMore: more && len(items) > 0}
	for i, it := range items {
		out.IDs[i] = it.Ref
	}
	if out.HasMore {
		next := cursor.Encode(scope, items[len(items)-1].CursorFor(q.Order))
		out.NextCursor = &next
	}
	return out, nil
}

package repo

import (
	"context"
	"time"

	"potluck/internal/core/cursor"
	"potluck/internal/services/ranking/domain"
)

// QueryByPopularity pages visible recipes by popularity score at or above minScore
func QueryByPopularity(ctx context.Context, s domain.ContentStore, locale string, minScore float64, c cursor.Cursor, limit int) ([]domain.RankableItem, bool, error) {
	return s.QueryRanked(ctx, domain.RankedQuery{
		Source:        domain.SourceRecipes,
		Order:         domain.OrderPopularity,
		Locale:        locale,
		MinPopularity: minScore,
		Cursor:        c,
		Limit:         limit,
	})
}

// QueryByRecency pages visible recipes newest first
func QueryByRecency(ctx context.Context, s domain.ContentStore, locale string, c cursor.Cursor, limit int) ([]domain.RankableItem, bool, error) {
	return s.QueryRanked(ctx, domain.RankedQuery{
		Source: domain.SourceRecipes,
		Order:  domain.OrderRecency,
		Locale: locale,
		Cursor: c,
		Limit:  limit,
	})
}

// QueryByControversy pages visible recipes created at or after afterTime by controversy score
func QueryByControversy(ctx context.Context, s domain.ContentStore, locale string, minScore float64, afterTime time.Time, c cursor.Cursor, limit int) ([]domain.RankableItem, bool, error) {
	return s.QueryRanked(ctx, domain.RankedQuery{
		Source:         domain.SourceRecipes,
		Order:          domain.OrderControversy,
		Locale:         locale,
		MinControversy: minScore,
		After:          afterTime,
		Cursor:         c,
		Limit:          limit,
	})
}

// Package service builds ranked feeds and serves their pages
package service

import (
	"time"

	"potluck/internal/core/mixer"
	"potluck/internal/core/scoring"
	"potluck/internal/services/ranking/domain"
)

// DefaultPattern favors popularity and trending over controversy
var DefaultPattern = mixer.Pattern{
	domain.CriterionPopularTrending,
	domain.CriterionTrending,
	domain.CriterionPopular,
	domain.CriterionPopularTrending,
	domain.CriterionFresh,
	domain.CriterionTrendingControversial,
	domain.CriterionControversial,
}

// Config controls feed building and paging
type Config struct {
	Locales       []string
	DefaultLocale string

	BuildTimeout time.Duration
	PoolTimeout  time.Duration

	// CategoryCap bounds single criterion feeds and the pools backing them
	CategoryCap int
	// MixDepth is how many head items of each pool enter the mixer
	MixDepth int
	// MixMax bounds the mixed feed
	MixMax  int
	Pattern mixer.Pattern

	TrendingWindow    time.Duration
	ControversyWindow time.Duration

	// MinPopularity and MinControversy gate the compound criteria; zero derives
	// each build's gate from the popular or controversial pool at GatePercentile
	MinPopularity  float64
	MinControversy float64
	GatePercentile float64

	PageDefault int
	PageMax     int

	// FallbackRPS budgets live fallback queries per process; 0 is unlimited
	FallbackRPS float64
	// FallbackWait bounds how long a request queues for that budget
	FallbackWait time.Duration

	EnableLeases bool
}

// withDefaults fills zero fields
func (c Config) withDefaults() Config {
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	if len(c.Locales) == 0 {
		c.Locales = []string{c.DefaultLocale}
	}
	if c.BuildTimeout <= 0 {
		c.BuildTimeout = 2 * time.Minute
	}
	if c.PoolTimeout <= 0 {
		c.PoolTimeout = 20 * time.Second
	}
	if c.CategoryCap <= 0 {
		c.CategoryCap = 500
	}
	if c.MixDepth <= 0 {
		c.MixDepth = 100
	}
	if c.MixMax <= 0 {
		c.MixMax = 500
	}
	if len(c.Pattern) == 0 {
		c.Pattern = DefaultPattern
	}
	if c.TrendingWindow <= 0 {
		c.TrendingWindow = 72 * time.Hour
	}
	if c.ControversyWindow <= 0 {
		c.ControversyWindow = 7 * 24 * time.Hour
	}
	if c.GatePercentile <= 0 || c.GatePercentile >= 1 {
		c.GatePercentile = scoring.DefaultGatePercentile
	}
	if c.PageMax <= 0 {
		c.PageMax = 50
	}
	if c.PageDefault <= 0 || c.PageDefault > c.PageMax {
		c.PageDefault = min(20, c.PageMax)
	}
	if c.FallbackWait <= 0 {
		c.FallbackWait = time.Second
	}
	return c
}

// Criteria returns the six ranking criteria in pool build order
func (c Config) Criteria() []domain.Criterion {
	return []domain.Criterion{
		{
			Name: domain.CriterionPopularTrending, Order: domain.OrderPopularity, Window: c.TrendingWindow,
			MinPopularity: c.MinPopularity, GatePopularity: true,
		},
		{Name: domain.CriterionTrending, Order: domain.OrderPopularity, Window: c.TrendingWindow},
		{Name: domain.CriterionPopular, Order: domain.OrderPopularity},
		{Name: domain.CriterionFresh, Order: domain.OrderRecency},
		{
			Name: domain.CriterionTrendingControversial, Order: domain.OrderControversy, Window: c.TrendingWindow,
			MinPopularity: c.MinPopularity, MinControversy: c.MinControversy,
			GatePopularity: true, GateControversy: true,
		},
		{Name: domain.CriterionControversial, Order: domain.OrderControversy, Window: c.ControversyWindow},
	}
}

// Keys lists every feed key the configured locales produce
func (c Config) Keys() []domain.FeedKey {
	out := make([]domain.FeedKey, 0, len(c.Locales)*len(domain.Categories))
	for _, l := range c.Locales {
		for _, cat := range domain.Categories {
			out = append(out, domain.FeedKey{Locale: l, Category: cat})
		}
	}
	return out
}

// clampLimit applies the page default and maximum
func (c Config) clampLimit(n int) int {
	if n <= 0 {
		return c.PageDefault
	}
	if n > c.PageMax {
		return c.PageMax
	}
	return n
}

// poolDepth is how many items criterion name needs
func (c Config) poolDepth(name string) int {
	for _, crit := range domain.CategoryCriterion {
		if crit == name {
			return max(c.CategoryCap, c.MixDepth)
		}
	}
	return c.MixDepth
}

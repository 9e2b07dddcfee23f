package module

import (
	"strings"
	"time"

	"potluck/internal/core/mixer"
	"potluck/internal/core/scoring"
	"potluck/internal/platform/config"
	"potluck/internal/platform/logger"
	"potluck/internal/services/ranking/service"
)

// Options for the ranking module
type Options struct {
	Service service.Config

	// Interval between scheduled rebuilds of every locale
	Interval time.Duration
	// SyncEvery is how often API replicas pull newer builds from redis; 0 disables
	SyncEvery time.Duration
	// Retention keeps superseded redis builds for in-flight cursors
	Retention time.Duration
}

// FromConfig fills options from environment
// CORE_FEED_LOCALES (default "en") lists the locales feeds are built for
// CORE_FEED_INTERVAL (default 5m) is the rebuild period
// CORE_FEED_MIX_PATTERN (CSV of criteria) overrides the interleave pattern; unknown names are dropped
// CORE_FEED_MIN_POPULARITY / MIN_CONTROVERSY (default 0) pin the compound criteria
// gates; 0 derives them per build at CORE_FEED_GATE_PERCENTILE (default 0.5) of
// the popular and controversial pools
// CORE_FEED_LEASES (default false) takes a per-locale advisory lock around each rebuild
// SERVICE_REDIS_TTL (default 30m) is the retention of superseded redis builds
func FromConfig(cfg config.Conf) Options {
	f := cfg.Prefix("CORE_FEED_")
	def := strings.ToLower(f.MayString("DEFAULT_LOCALE", "en"))
	return Options{
		Service: service.Config{
			Locales:           lower(f.MayCSV("LOCALES", []string{def})),
			DefaultLocale:     def,
			BuildTimeout:      f.MayDuration("BUILD_TIMEOUT", 2*time.Minute),
			PoolTimeout:       f.MayDuration("POOL_TIMEOUT", 20*time.Second),
			CategoryCap:       f.MayInt("CATEGORY_CAP", 500),
			MixDepth:          f.MayInt("MIX_DEPTH", 100),
			MixMax:            f.MayInt("MIX_MAX", 500),
			Pattern:           pattern(f.MayCSV("MIX_PATTERN", nil)),
			TrendingWindow:    f.MayDuration("TRENDING_WINDOW", 72*time.Hour),
			ControversyWindow: f.MayDuration("CONTROVERSY_WINDOW", 7*24*time.Hour),
			MinPopularity:     f.MayFloat64("MIN_POPULARITY", 0),
			MinControversy:    f.MayFloat64("MIN_CONTROVERSY", 0),
			GatePercentile:    f.MayFloat64("GATE_PERCENTILE", scoring.DefaultGatePercentile),
			PageDefault:       f.MayInt("PAGE_DEFAULT", 20),
			PageMax:           f.MayInt("PAGE_MAX", 50),
			FallbackRPS:       f.MayFloat64("FALLBACK_RPS", 50),
			FallbackWait:      f.MayDuration("FALLBACK_WAIT", time.Second),
			EnableLeases:      f.MayBool("LEASES", false),
		},
		Interval:  f.MayDuration("INTERVAL", 5*time.Minute),
		SyncEvery: f.MayDuration("SYNC_EVERY", 30*time.Second),
		Retention: cfg.Prefix("SERVICE_REDIS_").MayDuration("TTL", 30*time.Minute),
	}
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}

// pattern keeps known criteria names; nil falls back to the default pattern
func pattern(names []string) mixer.Pattern {
	known := map[string]bool{}
	for _, c := range (service.Config{}).Criteria() {
		known[c.Name] = true
	}
	var out mixer.Pattern
	for _, n := range names {
		n = strings.ToLower(n)
		if !known[n] {
			logger.Named("ranking").Warn().Str("criterion", n).Msg("CORE_FEED_MIX_PATTERN: unknown criterion dropped")
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package module

import (
	"time"

	"potluck/internal/core/scoring"
	"potluck/internal/platform/config"
)

// Options for the scores module
type Options struct {
	Interval    time.Duration
	SaveWeight  float64
	BatchSize   int
	ViewsFromCH bool
}

// FromConfig fills options from environment
// CORE_SCORES_INTERVAL (default 10m) is the recompute period
// CORE_SCORES_SAVE_WEIGHT (default 3.0) is the popularity weight of one save
// CORE_SCORES_VIEWS_FROM_CH (default false) reads views from ClickHouse item_views
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_SCORES_")
	return Options{
		Interval:    n.MayDuration("INTERVAL", 10*time.Minute),
		SaveWeight:  n.MayFloat64("SAVE_WEIGHT", scoring.DefaultSaveWeight),
		BatchSize:   n.MayInt("BATCH", 1000),
		ViewsFromCH: n.MayBool("VIEWS_FROM_CH", false),
	}
}

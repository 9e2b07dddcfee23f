// Package metrics registers the process Prometheus collectors and the scrape handler
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedRebuildDuration times one locale rebuild
	FeedRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_rebuild_duration_seconds",
			Help:    "Duration of one locale feed rebuild in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"locale"},
	)

	// FeedRebuildTotal counts rebuilds by outcome: ok, partial, failed, discarded, skipped
	FeedRebuildTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_rebuild_total",
			Help: "Total feed rebuilds by result",
		},
		[]string{"locale", "result"},
	)

	// FeedPoolItems is the size of the last candidate pool per criterion
	FeedPoolItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_pool_items",
			Help: "Items in the most recent candidate pool per criterion",
		},
		[]string{"criterion"},
	)

	// FeedPoolErrors counts candidate pool failures
	FeedPoolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_pool_errors_total",
			Help: "Total candidate pool failures per criterion",
		},
		[]string{"criterion"},
	)

	// FeedPageRequests counts served pages by category and serving path
	FeedPageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_page_requests_total",
			Help: "Total feed pages served by category and path (cache, previous, live, degraded)",
		},
		[]string{"category", "path"},
	)

	// FeedCacheVersion is the live build version per feed key
	FeedCacheVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_cache_version",
			Help: "Current cached build version per locale and category",
		},
		[]string{"locale", "category"},
	)

	// ScoresRecomputeRows counts rows whose derived scores were rewritten
	ScoresRecomputeRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scores_recompute_rows_total",
			Help: "Total content rows updated by score recompute",
		},
	)

	// HTTPRequests counts API responses by route pattern and status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP responses by route and status",
		},
		[]string{"route", "status"},
	)
)

// RecordRebuild records one locale rebuild outcome
func RecordRebuild(locale, result string, d time.Duration) {
	FeedRebuildDuration.WithLabelValues(locale).Observe(d.Seconds())
	FeedRebuildTotal.WithLabelValues(locale, result).Inc()
}

// RecordPool records one candidate pool build
func RecordPool(criterion string, items int, err error) {
	if err != nil {
		FeedPoolErrors.WithLabelValues(criterion).Inc()
	}
	FeedPoolItems.WithLabelValues(criterion).Set(float64(items))
}

// RecordPage records one served feed page
func RecordPage(category, path string) {
	FeedPageRequests.WithLabelValues(category, path).Inc()
}

// SetCacheVersion publishes the live version of a feed key
func SetCacheVersion(locale, category string, v uint64) {
	FeedCacheVersion.WithLabelValues(locale, category).Set(float64(v))
}

// RecordHTTP records one API response
func RecordHTTP(route string, status int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRebuild(t *testing.T) {
	before := testutil.ToFloat64(FeedRebuildTotal.WithLabelValues("xx", "ok"))
	RecordRebuild("xx", "ok", 20*time.Millisecond)
	if got := testutil.ToFloat64(FeedRebuildTotal.WithLabelValues("xx", "ok")); got != before+1 {
		t.Fatalf("feed_rebuild_total = %v want %v", got, before+1)
	}
}

func TestRecordPool(t *testing.T) {
	errsBefore := testutil.ToFloat64(FeedPoolErrors.WithLabelValues("metrics_test"))
	RecordPool("metrics_test", 42, nil)
	if got := testutil.ToFloat64(FeedPoolItems.WithLabelValues("metrics_test")); got != 42 {
		t.Fatalf("feed_pool_items = %v", got)
	}
	RecordPool("metrics_test", 0, errors.New("down"))
	if got := testutil.ToFloat64(FeedPoolItems.WithLabelValues("metrics_test")); got != 0 {
		t.Fatalf("feed_pool_items after failure = %v", got)
	}
	if got := testutil.ToFloat64(FeedPoolErrors.WithLabelValues("metrics_test")); got != errsBefore+1 {
		t.Fatalf("feed_pool_errors_total = %v", got)
	}
}

func TestRecordPageAndVersion(t *testing.T) {
	before := testutil.ToFloat64(FeedPageRequests.WithLabelValues("mixed", "live"))
	RecordPage("mixed", "live")
	if got := testutil.ToFloat64(FeedPageRequests.WithLabelValues("mixed", "live")); got != before+1 {
		t.Fatalf("feed_page_requests_total = %v", got)
	}
	SetCacheVersion("xx", "mixed", 9)
	if got := testutil.ToFloat64(FeedCacheVersion.WithLabelValues("xx", "mixed")); got != 9 {
		t.Fatalf("feed_cache_version = %v", got)
	}
}

func TestHandler_Exposes(t *testing.T) {
	RecordHTTP("/api/v1/feed", 200)
	ScoresRecomputeRows.Add(0)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"http_requests_total", "scores_recompute_rows_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("scrape missing %s", name)
		}
	}
}

// Package http serves liveness, readiness, build and feed cache status
package http

import (
	"context"
	"net/http"
	"time"

	"potluck/internal/core/version"
	"potluck/internal/modkit/httpkit"
	ranking "potluck/internal/services/ranking/domain"

	"golang.org/x/sync/errgroup"
)

// Pinger is a backend readiness can probe
type Pinger interface {
	Ping(context.Context) error
}

// FeedSnapshots reads cached feed builds without blocking on rebuilds
type FeedSnapshots interface {
	Snapshot(ctx context.Context, key ranking.FeedKey) (cur, prev *ranking.Feed)
}

// Deps are what the meta routes report on; a nil backend is skipped
type Deps struct {
	Service   string
	StartedAt time.Time
	PG        Pinger
	CH        Pinger
	Redis     Pinger

	// Feeds and FeedKeys back /meta/feed
	Feeds    FeedSnapshots
	FeedKeys []ranking.FeedKey

	// ReadyTimeout bounds the whole readiness probe, 2s when zero
	ReadyTimeout time.Duration
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{d: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(), nil })
	httpkit.Get(r, "/feed", h.feed)
}

type handlers struct{ d Deps }

// HealthResponse says the process is up
type HealthResponse struct {
	Service string `json:"service" example:"potluck-api"`
	Started string `json:"started" example:"2026-05-01T13:00:00Z"`
	Uptime  int64  `json:"uptime_seconds" example:"300"`
}

// Check is one backend probe
type Check struct {
	Name   string `json:"name" example:"pg"`
	Status string `json:"status" example:"ok"` // ok, fail or skipped
	Error  string `json:"error,omitempty"`
	Millis int64  `json:"ms" example:"3"`
}

// ReadyResponse is ok, degraded when a tier fails or postgres is not configured,
// or fail when postgres is configured and unreachable
type ReadyResponse struct {
	Status string  `json:"status" example:"ok"`
	Checks []Check `json:"checks"`
}

// FeedStatus is the cached state of one feed key
type FeedStatus struct {
	Locale          string `json:"locale" example:"en"`
	Category        string `json:"category" example:"mixed"`
	Version         uint64 `json:"version" example:"42"`
	PreviousVersion uint64 `json:"previous_version" example:"41"`
	BuildID         string `json:"build_id,omitempty"`
	BuiltAt         string `json:"built_at,omitempty" example:"2026-05-01T13:00:00Z"`
	Items           int    `json:"items" example:"500"`
}

// FeedResponse lists every configured feed key; Cold counts keys with no build yet
type FeedResponse struct {
	Feeds []FeedStatus `json:"feeds"`
	Cold  int          `json:"cold" example:"0"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		Service: h.d.Service,
		Started: h.d.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.d.StartedAt) / time.Second),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness, probing every backend concurrently
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok or degraded"
// @Failure 503 {object} ReadyResponse "postgres unreachable"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.d.ReadyTimeout)
	defer cancel()

	backends := []struct {
		name string
		p    Pinger
	}{{"pg", h.d.PG}, {"ch", h.d.CH}, {"redis", h.d.Redis}}

	checks := make([]Check, len(backends))
	var g errgroup.Group
	for i, b := range backends {
		checks[i] = Check{Name: b.name, Status: "skipped"}
		if b.p == nil {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			err := b.p.Ping(ctx)
			checks[i].Millis = time.Since(start).Milliseconds()
			checks[i].Status = "ok"
			if err != nil {
				checks[i].Status, checks[i].Error = "fail", err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	out := ReadyResponse{Status: "ok", Checks: checks}
	for _, c := range checks[1:] {
		if c.Status == "fail" {
			out.Status = "degraded"
		}
	}
	if checks[0].Status == "skipped" {
		out.Status = "degraded"
	}
	// postgres backs every list and the live fallback
	if checks[0].Status == "fail" {
		out.Status = "fail"
		return httpkit.Status(http.StatusServiceUnavailable, out), nil
	}
	return out, nil
}

// swagger:route GET /meta/feed Meta metaFeed
// @Summary Cached build version per feed key
// @Tags Meta
// @Produce json
// @Success 200 {object} FeedResponse "ok"
// @Router /meta/feed [get]
func (h *handlers) feed(r *http.Request) (any, error) {
	out := FeedResponse{Feeds: []FeedStatus{}}
	if h.d.Feeds == nil {
		return out, nil
	}
	for _, k := range h.d.FeedKeys {
		st := FeedStatus{Locale: k.Locale, Category: string(k.Category)}
		cur, prev := h.d.Feeds.Snapshot(r.Context(), k)
		if cur == nil {
			out.Cold++
		} else {
			st.Version, st.BuildID, st.Items = cur.Version, cur.BuildID, cur.Len()
			st.BuiltAt = cur.StartedAt.UTC().Format(time.RFC3339)
		}
		if prev != nil {
			st.PreviousVersion = prev.Version
		}
		out.Feeds = append(out.Feeds, st)
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"time"

	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/logger"
	"potluck/internal/services/ranking/domain"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around content store reads
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
	Interval         time.Duration
}

type rankedResult struct {
	items   []domain.RankableItem
	hasMore bool
}

// guardedStore trips after consecutive store failures so a down database fails fast
type guardedStore struct {
	inner domain.ContentStore
	cb    *gobreaker.CircuitBreaker[rankedResult]
}

// NewBreakerStore wraps inner with a named circuit breaker
// caller cancellation and invalid queries never count as failures
func NewBreakerStore(name string, inner domain.ContentStore, cfg BreakerConfig) domain.ContentStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := logger.Named("breaker")
	cb := gobreaker.NewCircuitBreaker[rankedResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isCallerError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("content store breaker state change")
		},
	})
	return &guardedStore{inner: inner, cb: cb}
}

func (g *guardedStore) QueryRanked(ctx context.Context, q domain.RankedQuery) ([]domain.RankableItem, bool, error) {
	res, err := g.cb.Execute(func() (rankedResult, error) {
		items, more, err := g.inner.QueryRanked(ctx, q)
		return rankedResult{items: items, hasMore: more}, err
	})
	if err != nil {
		return nil, false, err
	}
	return res.items, res.hasMore, nil
}

func isCallerError(err error) bool { return perr.IsCode(err, perr.ErrorCodeInvalidArgument) }

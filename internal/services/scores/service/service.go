// Package service recomputes the derived popularity and controversy scores
package service

import (
	"context"
	"errors"
	"time"

	"potluck/internal/core/scoring"
	"potluck/internal/modkit/repokit"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/metrics"
	"potluck/internal/services/scores/domain"
)

// Config controls batch size and the save weight of popularity
type Config struct {
	BatchSize  int
	SaveWeight float64
}

// Service wires TxRunner + Binder into the recompute pass
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config

	// Views overrides stored view counts when set
	Views domain.ViewSource

	now func() time.Time
}

var _ domain.RecomputePort = (*Service)(nil)

// New constructs the score service; views may be nil
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], views domain.ViewSource, cfg Config) *Service {
	if db == nil {
		panic("scores.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("scores.Service requires a non nil Repo binder")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.SaveWeight == 0 {
		cfg.SaveWeight = scoring.DefaultSaveWeight
	}
	return &Service{DB: db, Binder: binder, Views: views, Cfg: cfg, now: time.Now}
}

// RecomputeAll walks every scored table by id and rewrites scores batch by batch
// a failed batch is logged and skipped; the pass continues with the next one
func (s *Service) RecomputeAll(ctx context.Context) (domain.Report, error) {
	started := s.now()
	l := logger.C(ctx).With().Str("mod", "scores").Logger()
	l.Info().Msg("scores: recompute start")

	var rep domain.Report
	for _, t := range domain.Tables {
		if err := s.table(ctx, t, &rep); err != nil {
			rep.ElapsedMS = s.now().Sub(started).Milliseconds()
			return rep, err
		}
	}
	rep.ElapsedMS = s.now().Sub(started).Milliseconds()
	l.Info().
		Int64("rows", rep.Rows).
		Int("batches", rep.Batches).
		Int("failed", rep.Failed).
		Int64("elapsed_ms", rep.ElapsedMS).
		Msg("scores: recompute finish")
	return rep, nil
}

func (s *Service) table(ctx context.Context, t domain.Table, rep *domain.Report) error {
	l := logger.C(ctx).With().Str("mod", "scores").Str("table", string(t)).Logger()
	repo := s.Binder.Bind(s.DB)

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := repo.ScanBatch(ctx, t, after, s.Cfg.BatchSize)
		if err != nil {
			// without a page there is no next id to resume from
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		after = batch[len(batch)-1].ID
		rep.Batches++

		n, err := s.apply(ctx, t, batch)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			rep.Failed++
			l.Error().Err(err).Int64("after_id", after).Msg("scores: batch failed; continuing")
			continue
		}
		rep.Rows += n
		metrics.ScoresRecomputeRows.Add(float64(n))

		if len(batch) < s.Cfg.BatchSize {
			return nil
		}
	}
}

func (s *Service) apply(ctx context.Context, t domain.Table, batch []domain.EngagementRow) (int64, error) {
	var views map[string]int64
	if s.Views != nil {
		refs := make([]string, len(batch))
		for i, e := range batch {
			refs[i] = e.Ref
		}
		v, err := s.Views.Views(ctx, t, refs)
		if err != nil {
			return 0, err
		}
		views = v
	}

	updates := make([]domain.ScoreUpdate, len(batch))
	for i, e := range batch {
		if views != nil {
			e.Views = views[e.Ref]
		}
		sc := scoring.Compute(scoring.Engagement{Views: e.Views, Saves: e.Saves, Comments: e.Comments}, s.Cfg.SaveWeight)
		updates[i] = domain.ScoreUpdate{ID: e.ID, Popularity: sc.Popularity, Controversy: sc.Controversy}
	}

	var n int64
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		n, err = s.Binder.Bind(q).ApplyScores(ctx, t, updates, s.now())
		return err
	})
	return n, err
}

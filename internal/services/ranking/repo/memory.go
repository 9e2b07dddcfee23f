package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"potluck/internal/core/cursor"
	"potluck/internal/modkit/repokit"
	"potluck/internal/services/ranking/domain"
)

// Row is one in-memory content row with its visibility flags and joins
type Row struct {
	Source   domain.Source
	Item     domain.RankableItem
	Deleted  bool
	Private  bool
	Hashtags []string
	// SavedBy maps saver user ref to the time the row was saved
	SavedBy map[string]time.Time
}

// Memory is a ContentStore over a slice of rows, ordered exactly like the Postgres store
// safe for concurrent use; used by tests and local runs without a database
type Memory struct {
	mu   sync.RWMutex
	rows []Row

	// Err, when set, is returned by every query
	Err error
}

// NewMemory returns a store holding rows
func NewMemory(rows ...Row) *Memory { return &Memory{rows: rows} }

// Add appends rows
func (m *Memory) Add(rows ...Row) {
	m.mu.Lock()
	m.rows = append(m.rows, rows...)
	m.mu.Unlock()
}

// Bind satisfies repokit.Binder so the memory store can stand in for NewPG
func (m *Memory) Bind(_ repokit.Queryer) domain.ContentStore { return m }

// QueryRanked filters, orders and pages rows like BuildRanked does in SQL
func (m *Memory) QueryRanked(_ context.Context, q domain.RankedQuery) ([]domain.RankableItem, bool, error) {
	if _, _, err := BuildRanked(q); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, false, m.Err
	}

	var match []domain.RankableItem
	for _, r := range m.rows {
		if r.Source != q.Source || r.Deleted || r.Private {
			continue
		}
		it := r.Item
		if q.SavedByRef != "" {
			at, ok := r.SavedBy[q.SavedByRef]
			if !ok {
				continue
			}
			it.SavedAt = at.UTC()
		}
		if !keep(q, r, it) {
			continue
		}
		match = append(match, it)
	}

	sort.Slice(match, func(i, j int) bool {
		return cursor.Compare(match[i].CursorFor(q.Order), match[j].CursorFor(q.Order)) < 0
	})

	out := make([]domain.RankableItem, 0, len(match))
	for _, it := range match {
		if !q.Cursor.IsZero() && !cursor.After(q.Cursor, it.CursorFor(q.Order)) {
			continue
		}
		out = append(out, it)
	}

	limit := clampLimit(q.Limit)
	if len(out) > limit {
		return out[:limit], true, nil
	}
	return out, false, nil
}

func keep(q domain.RankedQuery, r Row, it domain.RankableItem) bool {
	switch {
	case q.Locale != "" && it.Locale != q.Locale:
		return false
	case !q.After.IsZero() && it.CreatedAt.Before(q.After):
		return false
	case q.MinPopularity > 0 && it.Popularity < q.MinPopularity:
		return false
	case q.MinControversy > 0 && it.Controversy < q.MinControversy:
		return false
	case q.AuthorRef != "" && it.AuthorRef != q.AuthorRef:
		return false
	case q.RatingMin > 0 && it.Rating < q.RatingMin:
		return false
	case q.RatingMax > 0 && it.Rating > q.RatingMax:
		return false
	}
	if q.Hashtag != "" {
		for _, h := range r.Hashtags {
			if h == q.Hashtag {
				return true
			}
		}
		return false
	}
	return true
}

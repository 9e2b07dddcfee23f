// Package cache holds complete ranked feed builds keyed by locale and category
//
// Every tier keeps the current build and the one it replaced. Readers load an
// immutable generation through an atomic pointer and never wait on a writer, so a
// concurrent reader sees either the old list or the new list in full.
package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"potluck/internal/services/ranking/domain"
)

// generation is never mutated once published
type generation struct {
	cur  *domain.Feed
	prev *domain.Feed
}

type slot struct {
	mu  sync.Mutex // serializes writers for one key
	gen atomic.Pointer[generation]
}

// Memory is the in-process tier
type Memory struct {
	slots sync.Map // domain.FeedKey -> *slot
	now   func() time.Time
}

var _ domain.FeedCache = (*Memory)(nil)

// NewMemory returns an empty memory tier
func NewMemory() *Memory { return &Memory{now: time.Now} }

func (m *Memory) slot(key domain.FeedKey) *slot {
	if v, ok := m.slots.Load(key); ok {
		return v.(*slot)
	}
	v, _ := m.slots.LoadOrStore(key, &slot{})
	return v.(*slot)
}

// Replace publishes f as the current build for f.Key
func (m *Memory) Replace(_ context.Context, f domain.Feed) (domain.Feed, bool, error) {
	s := m.slot(f.Key)
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur *domain.Feed
	if g := s.gen.Load(); g != nil {
		cur = g.cur
	}
	if cur != nil {
		if f.StartedAt.Before(cur.StartedAt) {
			return *cur, false, nil
		}
		switch {
		case f.Version == 0:
			f.Version = cur.Version + 1
		case f.Version <= cur.Version:
			return *cur, false, nil
		}
	} else if f.Version == 0 {
		f.Version = 1
	}

	f.IDs = slices.Clone(f.IDs)
	f.Refs = slices.Clone(f.Refs)
	if f.BuiltAt.IsZero() {
		f.BuiltAt = m.now().UTC()
	}
	s.gen.Store(&generation{cur: &f, prev: cur})
	return f, true, nil
}

// Snapshot returns the current and previous builds for key; either may be nil
func (m *Memory) Snapshot(_ context.Context, key domain.FeedKey) (cur, prev *domain.Feed) {
	v, ok := m.slots.Load(key)
	if !ok {
		return nil, nil
	}
	g := v.(*slot).gen.Load()
	if g == nil {
		return nil, nil
	}
	return g.cur, g.prev
}

// ReadSlice returns up to limit ids of the current build starting at offset
// a missing key or an offset past the end yields an empty slice
func (m *Memory) ReadSlice(ctx context.Context, key domain.FeedKey, offset, limit int) []int64 {
	cur, _ := m.Snapshot(ctx, key)
	if cur == nil || offset < 0 || limit <= 0 || offset >= len(cur.IDs) {
		return nil
	}
	end := min(offset+limit, len(cur.IDs))
	return cur.IDs[offset:end:end]
}

// Keys lists every key holding a build, in no particular order
func (m *Memory) Keys() []domain.FeedKey {
	var out []domain.FeedKey
	m.slots.Range(func(k, v any) bool {
		if v.(*slot).gen.Load() != nil {
			out = append(out, k.(domain.FeedKey))
		}
		return true
	})
	return out
}

// Version returns the current build version for key, 0 when cold
func (m *Memory) Version(key domain.FeedKey) uint64 {
	cur, _ := m.Snapshot(context.Background(), key)
	if cur == nil {
		return 0
	}
	return cur.Version
}

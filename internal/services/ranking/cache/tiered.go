package cache

import (
	"context"

	"potluck/internal/platform/logger"
	"potluck/internal/services/ranking/domain"
)

// Tiered serves reads from memory and persists builds to redis when configured
// redis failures degrade to memory only; they are logged and never returned
type Tiered struct {
	mem   *Memory
	redis *Redis // nil when disabled
}

var (
	_ domain.FeedCache     = (*Tiered)(nil)
	_ domain.RetainedFeeds = (*Tiered)(nil)
)

// NewTiered builds a tiered cache; redis may be nil
func NewTiered(mem *Memory, redis *Redis) *Tiered {
	if mem == nil {
		mem = NewMemory()
	}
	return &Tiered{mem: mem, redis: redis}
}

// Memory exposes the in-process tier
func (t *Tiered) Memory() *Memory { return t.mem }

// Replace publishes f in memory and then in redis
func (t *Tiered) Replace(ctx context.Context, f domain.Feed) (domain.Feed, bool, error) {
	log := logger.C(ctx).With().Str("feed", f.Key.String()).Logger()

	cur, _ := t.mem.Snapshot(ctx, f.Key)
	if cur != nil && f.StartedAt.Before(cur.StartedAt) {
		return *cur, false, nil
	}

	if t.redis != nil && f.Version == 0 {
		v, err := t.redis.NextVersion(ctx, f.Key)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("feed cache: redis version reserve failed; memory only")
		case cur != nil && v <= cur.Version:
			// counter was reset under us; memory assigns and redis catches up
		default:
			f.Version = v
		}
	}

	stored, ok, err := t.mem.Replace(ctx, f)
	if err != nil || !ok {
		return stored, ok, err
	}

	if t.redis != nil {
		if _, err := t.redis.Write(ctx, stored); err != nil {
			log.Warn().Err(err).Uint64("version", stored.Version).Msg("feed cache: redis write failed")
		}
	}
	return stored, true, nil
}

// Snapshot reads memory; a cold key is loaded from redis and warmed into memory
func (t *Tiered) Snapshot(ctx context.Context, key domain.FeedKey) (cur, prev *domain.Feed) {
	cur, prev = t.mem.Snapshot(ctx, key)
	if cur != nil || t.redis == nil {
		return cur, prev
	}
	if err := t.pull(ctx, key); err != nil {
		logger.C(ctx).Warn().Err(err).Str("feed", key.String()).Msg("feed cache: redis load failed")
		return nil, nil
	}
	return t.mem.Snapshot(ctx, key)
}

// Retained reads build v of key from redis while its payload is retained
// memory only keeps current and previous, so without redis older builds are gone
func (t *Tiered) Retained(ctx context.Context, key domain.FeedKey, v uint64) *domain.Feed {
	if t.redis == nil || v == 0 {
		return nil
	}
	f, err := t.redis.LoadVersion(ctx, key, v)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("feed", key.String()).Uint64("version", v).Msg("feed cache: retained build load failed")
		return nil
	}
	return f
}

// Sync pulls any key whose redis build is newer than memory
// used by API replicas that never build feeds themselves
func (t *Tiered) Sync(ctx context.Context, keys []domain.FeedKey) (int, error) {
	if t.redis == nil {
		return 0, nil
	}
	n := 0
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		v, err := t.redis.CurrentVersion(ctx, k)
		if err != nil {
			return n, err
		}
		if v == 0 || v <= t.mem.Version(k) {
			continue
		}
		if err := t.pull(ctx, k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// pull loads key from redis into memory, previous build first so it stays reachable
func (t *Tiered) pull(ctx context.Context, key domain.FeedKey) error {
	cur, prev, err := t.redis.Load(ctx, key)
	if err != nil || cur == nil {
		return err
	}
	if prev != nil && prev.Version > t.mem.Version(key) {
		if _, _, err := t.mem.Replace(ctx, *prev); err != nil {
			return err
		}
	}
	_, _, err = t.mem.Replace(ctx, *cur)
	return err
}

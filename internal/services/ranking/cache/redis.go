package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"potluck/internal/services/ranking/domain"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// DefaultRetention keeps superseded payloads long enough for in-flight pagination
const DefaultRetention = 30 * time.Minute

// Redis is the shared tier
//
// Layout per key, with base = feed:{locale}:{category}:
//
//	base:v{n}  payload of build n
//	base:cur   version number of the current build
//	base:seq   monotonic version counter
//
// The payload is written before the pointer moves, so a reader following the
// pointer always finds a complete build. The build the pointer leaves behind
// expires after the retention window.
type Redis struct {
	rc        redis.UniversalClient
	retention time.Duration
}

// NewRedis wraps rc; retention <= 0 uses DefaultRetention
func NewRedis(rc redis.UniversalClient, retention time.Duration) *Redis {
	if rc == nil {
		panic("cache: NewRedis requires a non nil client")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Redis{rc: rc, retention: retention}
}

func baseKey(k domain.FeedKey) string { return "feed:" + k.Locale + ":" + string(k.Category) }

func payloadKey(k domain.FeedKey, v uint64) string {
	return baseKey(k) + ":v" + strconv.FormatUint(v, 10)
}

func curKey(k domain.FeedKey) string { return baseKey(k) + ":cur" }

func seqKey(k domain.FeedKey) string { return baseKey(k) + ":seq" }

// payload is the stored form of one build
type payload struct {
	Version   uint64    `json:"v"`
	Prev      uint64    `json:"prev,omitempty"`
	BuildID   string    `json:"build"`
	StartedAt time.Time `json:"started"`
	BuiltAt   time.Time `json:"built"`
	IDs       []int64   `json:"ids"`
	Refs      []string  `json:"refs"`
}

func encodeFeed(f domain.Feed, prev uint64) ([]byte, error) {
	return json.Marshal(payload{
		Version:   f.Version,
		Prev:      prev,
		BuildID:   f.BuildID,
		StartedAt: f.StartedAt.UTC(),
		BuiltAt:   f.BuiltAt.UTC(),
		IDs:       f.IDs,
		Refs:      f.Refs,
	})
}

func decodeFeed(key domain.FeedKey, b []byte) (*domain.Feed, uint64, error) {
	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, 0, fmt.Errorf("decode feed %s: %w", key, err)
	}
	if len(p.Refs) != len(p.IDs) {
		return nil, 0, fmt.Errorf("decode feed %s: %d ids but %d refs", key, len(p.IDs), len(p.Refs))
	}
	return &domain.Feed{
		Key:       key,
		Version:   p.Version,
		BuildID:   p.BuildID,
		StartedAt: p.StartedAt,
		BuiltAt:   p.BuiltAt,
		IDs:       p.IDs,
		Refs:      p.Refs,
	}, p.Prev, nil
}

// NextVersion reserves the next version number for key
func (r *Redis) NextVersion(ctx context.Context, key domain.FeedKey) (uint64, error) {
	n, err := r.rc.Incr(ctx, seqKey(key)).Result()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// CurrentVersion returns the version the pointer names, 0 when absent
func (r *Redis) CurrentVersion(ctx context.Context, key domain.FeedKey) (uint64, error) {
	v, err := r.rc.Get(ctx, curKey(key)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// writeRetries bounds how often Write retries after another writer moved the pointer
const writeRetries = 16

// Write stores f and moves the pointer to it
// the pointer is watched, so a build whose version is not above the current
// pointer is left unpublished even when writers overlap
func (r *Redis) Write(ctx context.Context, f domain.Feed) (bool, error) {
	if f.Version == 0 {
		return false, errors.New("cache: redis write needs a version")
	}
	ck := curKey(f.Key)
	published := false
	publish := func(tx *redis.Tx) error {
		published = false
		old, err := tx.Get(ctx, ck).Uint64()
		if errors.Is(err, redis.Nil) {
			old, err = 0, nil
		}
		if err != nil {
			return err
		}
		if f.Version <= old {
			return nil
		}
		b, err := encodeFeed(f, old)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, payloadKey(f.Key, f.Version), b, 0)
			p.Set(ctx, ck, f.Version, 0)
			if old > 0 {
				p.Expire(ctx, payloadKey(f.Key, old), r.retention)
			}
			return nil
		})
		published = err == nil
		return err
	}

	for range writeRetries {
		err := r.rc.Watch(ctx, publish, ck)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return published, err
	}
	return false, fmt.Errorf("cache: redis write %s v%d: pointer kept moving", f.Key, f.Version)
}

// LoadVersion returns build v of key while it is retained, nil once it expired
func (r *Redis) LoadVersion(ctx context.Context, key domain.FeedKey, v uint64) (*domain.Feed, error) {
	f, _, err := r.loadVersion(ctx, key, v)
	return f, err
}

// Load follows the pointer for key and returns the current build and, while it
// is retained, the build it replaced
func (r *Redis) Load(ctx context.Context, key domain.FeedKey) (cur, prev *domain.Feed, err error) {
	v, err := r.CurrentVersion(ctx, key)
	if err != nil || v == 0 {
		return nil, nil, err
	}
	cur, pv, err := r.loadVersion(ctx, key, v)
	if err != nil || cur == nil || pv == 0 {
		return cur, nil, err
	}
	prev, _, err = r.loadVersion(ctx, key, pv)
	if err != nil {
		// the current build alone is still servable
		return cur, nil, nil
	}
	return cur, prev, nil
}

func (r *Redis) loadVersion(ctx context.Context, key domain.FeedKey, v uint64) (*domain.Feed, uint64, error) {
	b, err := r.rc.Get(ctx, payloadKey(key, v)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return decodeFeed(key, b)
}

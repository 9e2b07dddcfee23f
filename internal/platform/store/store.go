// Package store opens the backends potluck reads from: postgres for content,
// clickhouse for view counters and redis for the shared feed cache
package store

import (
	"context"
	"errors"
	"fmt"

	"potluck/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Store holds the opened backends; a disabled backend stays nil
type Store struct {
	Log logger.Logger

	// PG is the content database
	PG TxRunner

	// CH serves recipe view counters to score recompute
	CH Clickhouse

	// Redis backs the shared feed cache tier
	Redis redis.UniversalClient
}

// Row is a single scanned result
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag describes a finished write
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the statement surface repos bind to
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger reports reachability
type Pinger interface{ Ping(context.Context) error }

// Open dials every backend cfg enables, in order pg, ch, redis
// a failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("app", cfg.AppName).Logger()

	fail := func(backend string, err error) (*Store, error) {
		if cerr := s.Close(ctx); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, fmt.Errorf("store: open %s: %w", backend, err)
	}

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s)
		if err != nil {
			return fail("pg", err)
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg, s)
		if err != nil {
			return fail("ch", err)
		}
		s.CH = c
	}
	if cfg.RDS.Enabled {
		rc, err := openRedis(ctx, cfg)
		if err != nil {
			return fail("redis", err)
		}
		s.Redis = rc
	}

	s.Log.Info().
		Bool("pg", s.PG != nil).
		Bool("ch", s.CH != nil).
		Bool("redis", s.Redis != nil).
		Msg("store open")
	return s, nil
}

// pingers lists the opened backends that can report reachability
func (s *Store) pingers() []struct {
	name string
	p    Pinger
} {
	var out []struct {
		name string
		p    Pinger
	}
	add := func(name string, v any) {
		if p, ok := v.(Pinger); ok {
			out = append(out, struct {
				name string
				p    Pinger
			}{name, p})
		}
	}
	if s.PG != nil {
		add("pg", s.PG)
	}
	if s.CH != nil {
		add("ch", s.CH)
	}
	if s.Redis != nil {
		add("redis", redisPinger{s.Redis})
	}
	return out
}

type redisPinger struct{ c redis.UniversalClient }

func (r redisPinger) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Guard pings every opened backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	var errs []error
	for _, b := range s.pingers() {
		if err := b.p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every opened backend; nil backends are skipped
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Package module mounts the meta endpoints
package module

import (
	"context"
	"time"

	modkit "potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"

	metahttp "potluck/internal/services/api/meta/http"
	ranking "potluck/internal/services/ranking/domain"

	"github.com/redis/go-redis/v9"
)

// Ports optionally injects the feed cache so /meta/feed can report versions
type Ports struct {
	Feeds metahttp.FeedSnapshots
	Keys  []ranking.FeedKey
}

type redisPing struct{ c redis.UniversalClient }

func (p redisPing) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

// Module serves health, readiness, version and feed status under /meta
type Module struct {
	modkit.Base
	startedAt time.Time
}

// New mounts against whichever backends deps carries
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	feeds, _ := b.Injected().(Ports)

	m := &Module{Base: b, startedAt: time.Now()}

	md := metahttp.Deps{
		Service:   "potluck-api",
		StartedAt: m.startedAt,
		Feeds:     feeds.Feeds,
		FeedKeys:  feeds.Keys,
	}
	// typed nils would read as configured backends
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		md.PG = p
	}
	if p, ok := deps.CH.(metahttp.Pinger); ok {
		md.CH = p
	}
	if deps.Redis != nil {
		md.Redis = redisPing{c: deps.Redis}
	}
	m.Routes(func(r httpkit.Router) { metahttp.Register(r, md) })
	return m
}

// Ports is empty; meta only consumes
func (m *Module) Ports() any { return nil }

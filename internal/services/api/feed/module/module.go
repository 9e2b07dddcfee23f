// Package module mounts the ranked feed endpoint
package module

import (
	modkit "potluck/internal/modkit"
	"potluck/internal/modkit/httpkit"

	feedhttp "potluck/internal/services/api/feed/http"
	ranking "potluck/internal/services/ranking/domain"
)

// Ports is what the feed module needs from ranking, injected with modkit.WithPorts
type Ports struct {
	Pager ranking.PagerPort
}

// Module serves GET /feed
type Module struct {
	modkit.Base
	pager ranking.PagerPort
}

// New panics unless a Ports with a Pager is injected
func New(_ modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("feed"),
		modkit.WithPrefix("/feed"),
	}, opts...)...)

	p, _ := b.Injected().(Ports)
	if p.Pager == nil {
		panic("feed module requires the ranking Pager port")
	}

	m := &Module{Base: b, pager: p.Pager}
	m.Routes(func(r httpkit.Router) { feedhttp.Register(r, m.pager) })
	return m
}

// Ports re-exports the pager
func (m *Module) Ports() any { return Ports{Pager: m.pager} }

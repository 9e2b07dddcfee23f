// Package supervise runs long lived services under a suture supervisor tree
package supervise

import (
	"context"
	"time"

	"potluck/internal/platform/logger"

	"github.com/thejerf/suture/v4"
)

// Config tunes restart behavior; zero values take suture's defaults
type Config struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.FailureDecay <= 0 {
		c.FailureDecay = 30
	}
	if c.FailureBackoff <= 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// Tree is a root supervisor whose events are logged through zerolog
type Tree struct {
	root *suture.Supervisor
}

// New builds a tree named name
func New(name string, cfg Config) *Tree {
	cfg = cfg.withDefaults()
	return &Tree{root: suture.New(name, suture.Spec{
		EventHook:        Hook(logger.Named("supervise")),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})}
}

// Add starts svc under the tree; services added after Serve start immediately
func (t *Tree) Add(svc suture.Service) suture.ServiceToken { return t.root.Add(svc) }

// Serve blocks until ctx is done or the tree terminates
func (t *Tree) Serve(ctx context.Context) error { return t.root.Serve(ctx) }

// ServeBackground runs the tree in a goroutine; the channel yields its exit error
func (t *Tree) ServeBackground(ctx context.Context) <-chan error { return t.root.ServeBackground(ctx) }

// Hook logs supervisor events at a level matching their severity
func Hook(l *logger.Logger) suture.EventHook {
	return func(e suture.Event) {
		ev := l.Warn()
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeStopTimeout:
			ev = l.Error()
		case suture.EventTypeResume:
			ev = l.Info()
		}
		ev.Fields(e.Map()).Msg(e.String())
	}
}

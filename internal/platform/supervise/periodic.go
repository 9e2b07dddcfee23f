package supervise

import (
	"context"
	"time"

	"potluck/internal/platform/logger"
)

// Periodic runs Run once on start and then every Every until stopped
// a failed run is logged and the next tick runs as usual; a panic restarts the service
type Periodic struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error

	// SkipFirst waits one interval before the first run
	SkipFirst bool
}

// Serve implements suture.Service
func (p *Periodic) Serve(ctx context.Context) error {
	log := logger.Named(p.Name)
	every := p.Every
	if every <= 0 {
		every = time.Minute
	}

	if !p.SkipFirst {
		p.runOnce(ctx, log)
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.runOnce(ctx, log)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context, log *logger.Logger) {
	if ctx.Err() != nil {
		return
	}
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("periodic run failed")
	}
}

// String names the service in supervisor events
func (p *Periodic) String() string { return p.Name }

package supervise

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Server is the lifecycle surface of *http.Server
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTP adapts a blocking server to a supervised service with graceful shutdown
type HTTP struct {
	Server          Server
	ShutdownTimeout time.Duration
}

// Serve implements suture.Service
func (h *HTTP) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		timeout := h.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := h.Server.Shutdown(sctx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTP) String() string { return "http-server" }

// Package logger owns the process zerolog logger and its request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger; callers never depend on anything beyond it
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level   string
	Format  string // "json" or "console"
	Service string
	Caller  bool
	Writer  io.Writer
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
// config imports this package, so the keys are read here directly
func FromEnv() Options {
	env := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv("LOG_" + k)); v != "" {
			return v
		}
		return def
	}
	caller, _ := strconv.ParseBool(env("CALLER", "false"))
	return Options{
		Level:   env("LEVEL", "info"),
		Format:  env("FORMAT", "json"),
		Service: env("SERVICE", ""),
		Caller:  caller,
	}
}

// New builds a logger from opt without touching the process root
func New(opt Options) *Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.EqualFold(opt.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zc := zerolog.New(w).Level(lvl).With().Timestamp()
	if opt.Service != "" {
		zc = zc.Str("service", opt.Service)
	}
	if opt.Caller {
		zc = zc.Caller()
	}
	l := zc.Logger()
	return &l
}

var (
	initOnce sync.Once
	root     atomic.Pointer[zerolog.Logger]
)

// Get is the process root, built from the environment on first use
func Get() *Logger {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		if root.Load() == nil {
			root.Store(New(FromEnv()))
		}
	})
	return root.Load()
}

// Set replaces the process root
func Set(l *Logger) {
	Get()
	root.Store(l)
}

// C is the root with the request id chi attached to ctx, when there is one
func C(ctx context.Context) *Logger {
	id := chimw.GetReqID(ctx)
	if id == "" {
		return Get()
	}
	l := Get().With().Str("request_id", id).Logger()
	return &l
}

// Named is the root tagged with a component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

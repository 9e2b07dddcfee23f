// Package modkit composes API modules from shared deps and build options
package modkit

import (
	"potluck/internal/modkit/module"
	"potluck/internal/modkit/repokit"
	"potluck/internal/platform/config"
	"potluck/internal/platform/logger"
	"potluck/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Module is the surface api.Mount drives
type Module = module.Module

// Deps are the shared handles every module constructor receives
// optional backends are nil when disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Redis backs the shared feed cache tier; nil keeps feeds in process memory
	Redis redis.UniversalClient
}

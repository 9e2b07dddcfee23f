package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	// AppName tags connections so the servers can tell api from ranker
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot retries against an unreachable primary, zero uses the defaults
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the clickhouse view counter source
type CHConfig struct {
	Enabled bool
	URL     string
}

// RedisConfig configures the shared feed cache tier
type RedisConfig struct {
	Enabled  bool
	Addr     string
	DB       int
	Password string

	PingTimeout time.Duration
}

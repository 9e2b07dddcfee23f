package store

import "potluck/internal/platform/config"

// ConfigFromEnv reads backend settings for app from the SERVICE_* namespaces
// SERVICE_PGSQL_DBURL is required; clickhouse and redis are opt in
func ConfigFromEnv(root config.Conf, app string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rds := root.Prefix("SERVICE_REDIS_")

	cfg := Config{
		AppName: app,
		PG: PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),

			ConnectRetries: pg.MayInt("CONNECT_RETRIES", defaultConnectRetries),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", defaultPGPingTimeout),
		},
	}
	if ch.MayBool("ENABLED", false) {
		cfg.CH = CHConfig{Enabled: true, URL: ch.MustString("DBURL")}
	}
	if rds.MayBool("ENABLED", false) {
		cfg.RDS = RedisConfig{
			Enabled:  true,
			Addr:     rds.MayString("ADDR", "127.0.0.1:6379"),
			DB:       rds.MayInt("DB", 0),
			Password: rds.MayString("PASSWORD", ""),
		}
	}
	return cfg
}

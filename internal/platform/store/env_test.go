package store

import (
	"testing"

	"potluck/internal/platform/config"
	"potluck/internal/platform/testkit"
)

func TestConfigFromEnv_DefaultsToPGOnly(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/potluck")

	cfg := ConfigFromEnv(config.New(), "potluck-api")
	if !cfg.PG.Enabled || cfg.PG.URL != "postgres://localhost/potluck" || cfg.PG.MaxConns != 8 {
		t.Fatalf("pg = %+v", cfg.PG)
	}
	if cfg.CH.Enabled || cfg.RDS.Enabled || cfg.AppName != "potluck-api" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestConfigFromEnv_OptionalBackends(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/potluck")
	t.Setenv("SERVICE_REDIS_ENABLED", "true")
	t.Setenv("SERVICE_REDIS_ADDR", "redis:6379")
	t.Setenv("SERVICE_REDIS_DB", "2")
	t.Setenv("SERVICE_CLICKHOUSE_ENABLED", "true")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://localhost:9000/potluck")

	cfg := ConfigFromEnv(config.New(), "potluck-ranker")
	if !cfg.RDS.Enabled || cfg.RDS.Addr != "redis:6379" || cfg.RDS.DB != 2 {
		t.Fatalf("redis = %+v", cfg.RDS)
	}
	if !cfg.CH.Enabled || cfg.CH.URL == "" {
		t.Fatalf("ch = %+v", cfg.CH)
	}
}

func TestConfigFromEnv_PanicsWithoutDBURL(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	testkit.MustPanic(t, func() { ConfigFromEnv(config.New(), "x") })
}

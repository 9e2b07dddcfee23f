// Package schema carries the content table DDL used by local runs and integration tests
package schema

import (
	"context"
	_ "embed"

	"potluck/internal/platform/store"
)

//go:embed schema.sql
var ddl string

// SQL returns the embedded DDL
func SQL() string { return ddl }

// Apply runs the DDL; every statement is idempotent
func Apply(ctx context.Context, q store.RowQuerier) error {
	_, err := q.Exec(ctx, ddl)
	return err
}

// Package domain defines score recompute types and ports
package domain

import (
	"context"
	"time"
)

// Table names a content table carrying derived scores
type Table string

const (
	TableRecipes Table = "recipes"
	TableLogs    Table = "cooking_logs"
)

// Tables lists every scored table in recompute order
var Tables = []Table{TableRecipes, TableLogs}

// Kind is the item kind engagement events are recorded under
func (t Table) Kind() string {
	if t == TableLogs {
		return "log"
	}
	return "recipe"
}

// EngagementRow is the raw engagement of one content row
type EngagementRow struct {
	ID       int64
	Ref      string
	Views    int64
	Saves    int64
	Comments int64
}

// ScoreUpdate is the recomputed pair for one row
type ScoreUpdate struct {
	ID          int64
	Popularity  float64
	Controversy float64
}

// Report summarizes one recompute pass
type Report struct {
	Rows      int64
	Batches   int
	Failed    int
	ElapsedMS int64
}

// StorageRepo reads engagement and writes scores
type StorageRepo interface {
	// ScanBatch returns up to limit rows of t with id above afterID, ascending by id
	ScanBatch(ctx context.Context, t Table, afterID int64, limit int) ([]EngagementRow, error)
	// ApplyScores writes updates in one statement and returns the rows changed
	ApplyScores(ctx context.Context, t Table, updates []ScoreUpdate, at time.Time) (int64, error)
}

// ViewSource supplies view counts from the engagement store, keyed by public ref
type ViewSource interface {
	Views(ctx context.Context, t Table, refs []string) (map[string]int64, error)
}

// RecomputePort rewrites the derived scores of every content row
type RecomputePort interface {
	RecomputeAll(ctx context.Context) (Report, error)
}

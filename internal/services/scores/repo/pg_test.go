package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/store"
	"potluck/internal/services/scores/domain"
)

type tag int64

func (t tag) String() string      { return "UPDATE" }
func (t tag) RowsAffected() int64 { return int64(t) }

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		}
	}
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

type fakeQ struct {
	sql  string
	args []any
	rows *fakeRows
	err  error
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return tag(len(args[0].([]int64))), nil
}
func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}
func (f *fakeQ) QueryRow(context.Context, string, ...any) store.Row { return nil }

func TestScanBatch_KeysetByID(t *testing.T) {
	t.Parallel()

	q := &fakeQ{rows: &fakeRows{data: [][]any{{int64(5), "ref", int64(10), int64(2), int64(1)}}}}
	rows, err := NewPG().Bind(q).ScanBatch(context.Background(), domain.TableRecipes, 4, 100)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 5 || rows[0].Views != 10 || rows[0].Saves != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if !strings.Contains(q.sql, "WHERE id > $1") || q.args[0] != int64(4) || q.args[1] != 100 {
		t.Fatalf("sql=%s args=%v", q.sql, q.args)
	}
}

func TestApplyScores_UnnestUpdate(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	n, err := NewPG().Bind(q).ApplyScores(context.Background(), domain.TableLogs, []domain.ScoreUpdate{
		{ID: 1, Popularity: 2, Controversy: 3},
		{ID: 9, Popularity: 4, Controversy: 5},
	}, at)
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if !strings.Contains(q.sql, "UPDATE cooking_logs") || !strings.Contains(q.sql, "unnest(") {
		t.Fatalf("sql = %s", q.sql)
	}
	ids := q.args[0].([]int64)
	if ids[1] != 9 || q.args[3] != at {
		t.Fatalf("args = %v", q.args)
	}
}

func TestApplyScores_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	n, err := NewPG().Bind(q).ApplyScores(context.Background(), domain.TableRecipes, nil, time.Now())
	if err != nil || n != 0 || q.sql != "" {
		t.Fatalf("n=%d err=%v sql=%q", n, err, q.sql)
	}
}

func TestRepo_UnknownTable(t *testing.T) {
	t.Parallel()

	_, err := NewPG().Bind(&fakeQ{}).ScanBatch(context.Background(), "users", 0, 1)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestScanBatch_MapsQueryError(t *testing.T) {
	t.Parallel()

	_, err := NewPG().Bind(&fakeQ{err: errors.New("boom")}).ScanBatch(context.Background(), domain.TableRecipes, 0, 1)
	if err == nil {
		t.Fatalf("expected error")
	}
}

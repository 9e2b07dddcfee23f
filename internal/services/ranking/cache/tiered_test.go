package cache

import (
	"context"
	"testing"
	"time"
)

func TestTiered_MemoryOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tc := NewTiered(nil, nil)
	t0 := time.Now()

	got, ok, err := tc.Replace(ctx, feed(t0, 1, 2))
	if err != nil || !ok || got.Version != 1 {
		t.Fatalf("replace = %+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := tc.Replace(ctx, feed(t0.Add(-time.Second), 3)); ok {
		t.Fatal("older build accepted")
	}
	cur, prev := tc.Snapshot(ctx, key)
	if cur == nil || cur.Version != 1 || prev != nil {
		t.Fatalf("cur=%+v prev=%+v", cur, prev)
	}
	if n, err := tc.Sync(ctx, tc.Memory().Keys()); n != 0 || err != nil {
		t.Fatalf("sync without redis = %d %v", n, err)
	}
}

func TestTiered_RetainedNeedsRedis(t *testing.T) {
	t.Parallel()

	tc := NewTiered(nil, nil)
	if _, _, err := tc.Replace(context.Background(), feed(time.Now(), 1)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if f := tc.Retained(context.Background(), key, 1); f != nil {
		t.Fatalf("memory only tier retained %+v", f)
	}
}

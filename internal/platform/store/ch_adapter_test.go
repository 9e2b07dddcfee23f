package store

import (
	"context"
	"strings"
	"testing"
)

func TestCHAdapter_InsertWantsRowSlices(t *testing.T) {
	t.Parallel()

	err := newCHAdapter(nil).Insert(context.Background(), "item_views", map[string]int{"r1": 3})
	if err == nil || !strings.Contains(err.Error(), "item_views") {
		t.Fatalf("err = %v", err)
	}
}

func TestCHAdapter_PingNil(t *testing.T) {
	t.Parallel()

	var a *chAdapter
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("nil adapter pinged")
	}
	if err := newCHAdapter(nil).Ping(context.Background()); err == nil {
		t.Fatalf("adapter without client pinged")
	}
}

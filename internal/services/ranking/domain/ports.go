package domain

import (
	"context"
	"errors"
)

// ErrBuildDiscarded marks a rebuild that was interrupted before the swap; the prior feed stays live
var ErrBuildDiscarded = errors.New("ranking: build discarded")

// ErrNoPools marks a rebuild where every candidate pool failed; the prior feed stays live
var ErrNoPools = errors.New("ranking: every candidate pool failed")

// ContentStore is the read-only query surface over the content tables
// results are ordered key desc, id desc and hasMore reports whether rows remain past Limit
type ContentStore interface {
	QueryRanked(ctx context.Context, q RankedQuery) (items []RankableItem, hasMore bool, err error)
}

// FeedCache stores complete feed builds per key
//
// Replace swaps in f as the current build and demotes the prior current build to
// previous. A zero f.Version is assigned the next version for the key. A build
// that started before the current one, or carries a version not above it, is
// skipped and ok is false. Snapshot never blocks on Replace
type FeedCache interface {
	Replace(ctx context.Context, f Feed) (stored Feed, ok bool, err error)
	Snapshot(ctx context.Context, key FeedKey) (cur, prev *Feed)
}

// RetainedFeeds is implemented by caches that keep superseded builds past the
// previous one for a while; Retained returns nil once build v is gone
type RetainedFeeds interface {
	Retained(ctx context.Context, key FeedKey, v uint64) *Feed
}

// BuilderPort rebuilds cached feeds
type BuilderPort interface {
	// Rebuild builds and swaps every category feed for one locale
	Rebuild(ctx context.Context, locale string) (BuildReport, error)
	// RebuildAll rebuilds every configured locale in turn
	RebuildAll(ctx context.Context) error
}

// PagerPort serves feed pages
type PagerPort interface {
	Page(ctx context.Context, req PageRequest) (Page, error)
}

// PageRequest asks for one page of a feed
type PageRequest struct {
	Locale   string
	Category Category
	Cursor   string
	Limit    int
}

// BuildReport summarizes one locale rebuild
type BuildReport struct {
	Locale    string
	BuildID   string
	Pools     map[string]int
	Failed    []string
	Versions  map[Category]uint64
	Skipped   []Category
	ElapsedMS int64
}

// Package domain defines ranking core types and ports
package domain

import (
	"time"

	"potluck/internal/core/cursor"
)

// Source names the content table a ranked query reads
type Source string

const (
	// SourceRecipes reads recipes
	SourceRecipes Source = "recipes"
	// SourceLogs reads cooking logs
	SourceLogs Source = "logs"
)

// Order names the ordering key of a ranked query; all orders are key desc, id desc
type Order string

const (
	// OrderRecency orders by created_at
	OrderRecency Order = "recency"
	// OrderPopularity orders by the stored popularity score
	OrderPopularity Order = "popularity"
	// OrderControversy orders by the stored controversy score
	OrderControversy Order = "controversy"
	// OrderComments orders by comment count
	OrderComments Order = "comments"
	// OrderSaves orders by saved count
	OrderSaves Order = "saves"
	// OrderSavedAt orders by the time the item was saved (saved items lists)
	OrderSavedAt Order = "saved_at"
)

// Kind returns the cursor kind that pages this order
func (o Order) Kind() cursor.Kind {
	switch o {
	case OrderPopularity, OrderControversy:
		return cursor.KindScore
	case OrderComments, OrderSaves:
		return cursor.KindCount
	default:
		return cursor.KindTime
	}
}

// Valid reports whether o is a known order
func (o Order) Valid() bool {
	switch o {
	case OrderRecency, OrderPopularity, OrderControversy, OrderComments, OrderSaves, OrderSavedAt:
		return true
	}
	return false
}

// RankableItem is the slice of a content row the ranking core consumes
// owned by the content domain; the core never writes it
type RankableItem struct {
	ID           int64
	Ref          string // public id handed to clients
	AuthorRef    string
	Locale       string
	CreatedAt    time.Time
	Popularity   float64
	Controversy  float64
	CommentCount int64
	SavedCount   int64
	Rating       int

	// SavedAt is set only on saved-items queries
	SavedAt time.Time
}

// CursorFor returns the resume position of it under order o
func (it RankableItem) CursorFor(o Order) cursor.Cursor {
	switch o {
	case OrderPopularity:
		return cursor.Score(it.Popularity, it.ID)
	case OrderControversy:
		return cursor.Score(it.Controversy, it.ID)
	case OrderComments:
		return cursor.Count(it.CommentCount, it.ID)
	case OrderSaves:
		return cursor.Count(it.SavedCount, it.ID)
	case OrderSavedAt:
		return cursor.Time(it.SavedAt, it.ID)
	default:
		return cursor.Time(it.CreatedAt, it.ID)
	}
}

// RankedQuery is the single parameterized query every list is built on
// zero values disable the matching filter
type RankedQuery struct {
	Source Source
	Order  Order
	Locale string

	// After bounds created_at from below (recency window)
	After time.Time

	MinPopularity  float64
	MinControversy float64

	Hashtag    string
	AuthorRef  string
	SavedByRef string

	// RatingMin and RatingMax bound cooking log ratings when > 0
	RatingMin int
	RatingMax int

	Cursor cursor.Cursor
	Limit  int
}

// Criterion is one named ordering rule that yields one candidate pool
type Criterion struct {
	Name           string
	Order          Order
	Window         time.Duration
	MinPopularity  float64
	MinControversy float64

	// GatePopularity and GateControversy mark the thresholds a compound
	// criterion intersects with; the builder resolves a zero minimum from the
	// popular or controversial pool before querying
	GatePopularity  bool
	GateControversy bool
}

// Compound reports whether c intersects its ordering with a score threshold
func (c Criterion) Compound() bool { return c.GatePopularity || c.GateControversy }

// Query builds the ranked query for criterion c at now
func (c Criterion) Query(locale string, now time.Time, limit int) RankedQuery {
	q := RankedQuery{
		Source:         SourceRecipes,
		Order:          c.Order,
		Locale:         locale,
		MinPopularity:  c.MinPopularity,
		MinControversy: c.MinControversy,
		Limit:          limit,
	}
	if c.Window > 0 {
		q.After = now.Add(-c.Window)
	}
	return q
}

// Criterion names
const (
	CriterionPopularTrending       = "popular_trending"
	CriterionTrending              = "trending"
	CriterionPopular               = "popular"
	CriterionFresh                 = "fresh"
	CriterionTrendingControversial = "trending_controversial"
	CriterionControversial         = "controversial"
)

// Category is the client-facing feed selector
type Category string

const (
	CategoryMixed         Category = "mixed"
	CategoryPopular       Category = "popular"
	CategoryTrending      Category = "trending"
	CategoryFresh         Category = "fresh"
	CategoryControversial Category = "controversial"
)

// Categories lists every category in build order
var Categories = []Category{CategoryMixed, CategoryPopular, CategoryTrending, CategoryFresh, CategoryControversial}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// CategoryCriterion maps single-criterion categories to the pool that backs them
// mixed is absent; it is the interleave of every pool
var CategoryCriterion = map[Category]string{
	CategoryPopular:       CriterionPopular,
	CategoryTrending:      CriterionTrending,
	CategoryFresh:         CriterionFresh,
	CategoryControversial: CriterionControversial,
}

// FeedKey addresses one cached ranked feed
type FeedKey struct {
	Locale   string
	Category Category
}

// String renders the key as locale:category
func (k FeedKey) String() string { return k.Locale + ":" + string(k.Category) }

// Scope namespaces position cursors minted for this feed
func (k FeedKey) Scope() string { return "feed:" + k.String() }

// LiveScope namespaces recency cursors minted by the degraded path for this feed
func (k FeedKey) LiveScope() string { return "feed-live:" + k.String() }

// Feed is one complete build of a ranked feed; never mutated after it is cached
type Feed struct {
	Key       FeedKey
	Version   uint64
	BuildID   string
	StartedAt time.Time
	BuiltAt   time.Time

	// IDs and Refs are parallel: Refs[i] is the public id of IDs[i]
	IDs  []int64
	Refs []string
}

// Len returns the number of ranked items
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.IDs)
}

// Page is one slice of a paginated list
type Page struct {
	IDs        []int64
	Refs       []string
	NextCursor string // empty when HasMore is false
	HasMore    bool

	// Path reports how the page was served: cache, previous, retained, live or degraded
	Path string
}

// Page paths
const (
	PathCache    = "cache"
	PathPrevious = "previous"
	PathRetained = "retained"
	PathLive     = "live"
	PathDegraded = "degraded"
)

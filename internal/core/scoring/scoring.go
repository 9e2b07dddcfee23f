// Package scoring holds the derived engagement metrics the content domain stores
// on each rankable item. The ranking core reads the stored values and never
// computes them itself.
package scoring

import (
	"math"
	"slices"
)

// DefaultSaveWeight is how many views a single save is worth
const DefaultSaveWeight = 3.0

// Engagement is the raw signal for one item
type Engagement struct {
	Views    int64
	Saves    int64
	Comments int64
}

// Popularity is views plus weighted saves
func Popularity(e Engagement, saveWeight float64) float64 {
	if saveWeight < 0 {
		saveWeight = 0
	}
	return float64(nonNeg(e.Views)) + saveWeight*float64(nonNeg(e.Saves))
}

// Controversy rewards discussion that outpaces endorsement
// comments/(saves+1) scaled by ln(1+comments) so a single comment on an unsaved item stays small
func Controversy(e Engagement) float64 {
	c := float64(nonNeg(e.Comments))
	s := float64(nonNeg(e.Saves))
	if c == 0 {
		return 0
	}
	return c / (s + 1) * math.Log1p(c)
}

// Scores bundles both metrics
type Scores struct {
	Popularity  float64
	Controversy float64
}

// Compute returns both metrics for e
func Compute(e Engagement, saveWeight float64) Scores {
	return Scores{Popularity: Popularity(e, saveWeight), Controversy: Controversy(e)}
}

// DefaultGatePercentile places a compound criterion's threshold at the median
const DefaultGatePercentile = 0.5

// Percentile is the nearest-rank p-th percentile of scores, ignoring scores at
// or below zero; ok is false when no positive score remains
func Percentile(scores []float64, p float64) (v float64, ok bool) {
	pos := make([]float64, 0, len(scores))
	for _, s := range scores {
		if s > 0 && !math.IsInf(s, 0) {
			pos = append(pos, s)
		}
	}
	if len(pos) == 0 {
		return 0, false
	}
	slices.Sort(pos)
	i := int(math.Ceil(p*float64(len(pos)))) - 1
	return pos[min(max(i, 0), len(pos)-1)], true
}

func nonNeg(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

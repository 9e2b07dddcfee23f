// Package mixer merges ordered candidate pools into one ranked list
//
// Pools are interleaved with a fixed weighted round robin: the pattern names the
// pool polled at each slot of a round, and a pool listed twice is polled twice per
// round. The output carries no scores; position is the rank.
package mixer

// Pattern is the ordered list of pool names polled per round
type Pattern []string

// Weights returns how many slots each pool holds per round
func (p Pattern) Weights() map[string]int {
	out := make(map[string]int, len(p))
	for _, name := range p {
		out[name]++
	}
	return out
}

// Mix interleaves pools following pattern and returns at most max ids
//
// Each slot pops the head of its pool queue. An id already placed by an earlier
// slot is dropped and the slot's turn is spent, so first placement wins. Mixing
// stops at max ids or once every queue named by the pattern is empty. Pools not
// named by the pattern are ignored. max <= 0 yields an empty result.
func Mix(pattern Pattern, pools map[string][]int64, max int) []int64 {
	if max <= 0 || len(pattern) == 0 {
		return []int64{}
	}

	// heads tracks the next unread index per pool; inputs are never mutated
	heads := make(map[string]int, len(pools))
	remaining := 0
	for name := range pattern.Weights() {
		remaining += len(pools[name])
	}

	capHint := remaining
	if capHint > max {
		capHint = max
	}
	out := make([]int64, 0, capHint)
	seen := make(map[int64]struct{}, capHint)

	for remaining > 0 && len(out) < max {
		for _, name := range pattern {
			q := pools[name]
			h := heads[name]
			if h >= len(q) {
				continue
			}
			id := q[h]
			heads[name] = h + 1
			remaining--

			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

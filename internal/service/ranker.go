package service

import (
	"container/heap"
	"sort"

	"github.com/shiva/tripmatch/internal/model"
)

// ScoredOccurrence is one candidate after scoring.
type ScoredOccurrence struct {
	Occurrence *model.TripOccurrence
	Score      float64
	Reasons    []string
}

// rankBefore is the result order: score descending, then soonest departure,
// then lowest id so equal rows never swap between calls.
func rankBefore(a, b *ScoredOccurrence) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Occurrence.StartDate.Equal(b.Occurrence.StartDate) {
		return a.Occurrence.StartDate.Before(b.Occurrence.StartDate)
	}
	return a.Occurrence.ID < b.Occurrence.ID
}

// SortRanked orders candidates in place by rankBefore.
func SortRanked(items []ScoredOccurrence) {
	sort.SliceStable(items, func(i, j int) bool { return rankBefore(&items[i], &items[j]) })
}

// ─── Ranker ─────────────────────────────────────────────────

// Ranker drops candidates below the minimum score and keeps the best ones.
//
// The working set is bounded: only the current top-K candidates are held in
// a heap whose root is the weakest of them. K ≥ limit and the order is total,
// so the output is identical to sorting everything and truncating.
//
// Complexity: O(N log K) time, O(K) memory.
type Ranker struct {
	minScore float64
	topK     int
	limit    int
}

// NewRanker creates a ranker. topK is raised to limit when smaller.
func NewRanker(minScore float64, topK, limit int) *Ranker {
	if topK < limit {
		topK = limit
	}
	return &Ranker{minScore: minScore, topK: topK, limit: limit}
}

// Select returns the ordered top results and the set of their occurrence ids.
func (r *Ranker) Select(candidates []ScoredOccurrence) ([]ScoredOccurrence, map[int64]bool) {
	included := make(map[int64]bool)
	if r.limit <= 0 {
		return []ScoredOccurrence{}, included
	}

	h := &worstFirst{}
	for i := range candidates {
		c := candidates[i]
		if c.Score < r.minScore {
			continue
		}
		if h.Len() < r.topK {
			heap.Push(h, c)
			continue
		}
		if rankBefore(&c, &(*h)[0]) {
			(*h)[0] = c
			heap.Fix(h, 0)
		}
	}

	out := make([]ScoredOccurrence, h.Len())
	copy(out, *h)
	SortRanked(out)
	if len(out) > r.limit {
		out = out[:r.limit]
	}
	for _, c := range out {
		included[c.Occurrence.ID] = true
	}
	return out, included
}

// worstFirst is a heap.Interface whose root is the lowest-ranked candidate.
type worstFirst []ScoredOccurrence

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return rankBefore(&h[j], &h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(ScoredOccurrence)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

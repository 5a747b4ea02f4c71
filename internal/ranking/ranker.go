// Package ranking maintains the ordered view over scored candidates. The
// ranker re-sorts on its own ordering key, so results may arrive from
// parallel probing in any order and the final view is still deterministic.
package ranking

import (
	"sort"
	"sync"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// SortKey selects the ordering of a candidate listing.
type SortKey string

const (
	SortByRank SortKey = "rank" // suggestion category, score desc, path asc
	SortByPath SortKey = "path"
	SortBySize SortKey = "size"
	SortByAge  SortKey = "age"
	SortByIdle SortKey = "idle"
)

// ListOptions filters and pages a candidate listing.
type ListOptions struct {
	Suggestion models.Suggestion // empty = all categories
	MinScore   float64
	SortBy     SortKey // empty = SortByRank
	Page       int     // 1-based; 0 = first page
	PerPage    int     // 0 = everything
}

// Ranker collects scored candidates and exposes ordered views without
// re-scanning. Insertion order never affects the output ordering.
type Ranker struct {
	mu         sync.RWMutex
	candidates []*models.Candidate
	dirty      bool
}

// New creates an empty ranker.
func New() *Ranker {
	return &Ranker{}
}

// Add inserts a scored candidate.
func (r *Ranker) Add(c *models.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append(r.candidates, c)
	r.dirty = true
}

// Len returns the number of ranked candidates.
func (r *Ranker) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.candidates)
}

// All returns every candidate in canonical rank order. The returned slice
// is shared; callers must not reorder it.
func (r *Ranker) All() []*models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sortLocked()
	return r.candidates
}

// TopK returns the highest-ranked candidates of one suggestion category.
func (r *Ranker) TopK(suggestion models.Suggestion, k int) []*models.Candidate {
	var out []*models.Candidate
	for _, c := range r.All() {
		if c.Suggestion != suggestion {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	return out
}

// Largest returns the k biggest candidates regardless of category.
func (r *Ranker) Largest(k int) []*models.Candidate {
	return r.sortedCopy(k, func(a, b *models.Candidate) bool {
		if a.Entry.Size != b.Entry.Size {
			return a.Entry.Size > b.Entry.Size
		}
		return a.Entry.Path < b.Entry.Path
	})
}

// Oldest returns the k longest-idle candidates regardless of category.
func (r *Ranker) Oldest(k int) []*models.Candidate {
	return r.sortedCopy(k, func(a, b *models.Candidate) bool {
		if a.Signal.IdleDays != b.Signal.IdleDays {
			return a.Signal.IdleDays > b.Signal.IdleDays
		}
		return a.Entry.Path < b.Entry.Path
	})
}

// List applies filtering, sorting and pagination for the presentation
// surface.
func (r *Ranker) List(opts ListOptions) []*models.Candidate {
	filtered := make([]*models.Candidate, 0)
	for _, c := range r.All() {
		if opts.Suggestion != "" && c.Suggestion != opts.Suggestion {
			continue
		}
		if c.Score < opts.MinScore {
			continue
		}
		filtered = append(filtered, c)
	}

	switch opts.SortBy {
	case "", SortByRank:
		// All() already emits rank order.
	case SortByPath:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Entry.Path < filtered[j].Entry.Path })
	case SortBySize:
		sort.Slice(filtered, func(i, j int) bool {
			if filtered[i].Entry.Size != filtered[j].Entry.Size {
				return filtered[i].Entry.Size > filtered[j].Entry.Size
			}
			return filtered[i].Entry.Path < filtered[j].Entry.Path
		})
	case SortByAge:
		sort.Slice(filtered, func(i, j int) bool {
			if filtered[i].Signal.AgeDays != filtered[j].Signal.AgeDays {
				return filtered[i].Signal.AgeDays > filtered[j].Signal.AgeDays
			}
			return filtered[i].Entry.Path < filtered[j].Entry.Path
		})
	case SortByIdle:
		sort.Slice(filtered, func(i, j int) bool {
			if filtered[i].Signal.IdleDays != filtered[j].Signal.IdleDays {
				return filtered[i].Signal.IdleDays > filtered[j].Signal.IdleDays
			}
			return filtered[i].Entry.Path < filtered[j].Entry.Path
		})
	}

	return page(filtered, opts.Page, opts.PerPage)
}

// sortLocked establishes the canonical order: suggestion category first
// (delete, archive, keep), then score descending, then path ascending as
// the tie-break. Caller holds the write lock.
func (r *Ranker) sortLocked() {
	if !r.dirty {
		return
	}
	sort.Slice(r.candidates, func(i, j int) bool {
		a, b := r.candidates[i], r.candidates[j]
		if a.Suggestion.Rank() != b.Suggestion.Rank() {
			return a.Suggestion.Rank() < b.Suggestion.Rank()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Entry.Path < b.Entry.Path
	})
	r.dirty = false
}

func (r *Ranker) sortedCopy(k int, less func(a, b *models.Candidate) bool) []*models.Candidate {
	r.mu.RLock()
	out := make([]*models.Candidate, len(r.candidates))
	copy(out, r.candidates)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func page(list []*models.Candidate, pageNum, perPage int) []*models.Candidate {
	if perPage <= 0 {
		return list
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * perPage
	if start >= len(list) {
		return nil
	}
	end := start + perPage
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

package ranking

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

func candidate(path string, suggestion models.Suggestion, score float64) *models.Candidate {
	return &models.Candidate{
		ID:         models.CandidateID(path),
		Entry:      &models.FileEntry{Path: path},
		Score:      score,
		Suggestion: suggestion,
	}
}

func paths(list []*models.Candidate) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Entry.Path
	}
	return out
}

func TestRankOrder(t *testing.T) {
	r := New()
	r.Add(candidate("/keep/a", models.SuggestKeep, 0.1))
	r.Add(candidate("/arch/b", models.SuggestArchive, 0.5))
	r.Add(candidate("/del/c", models.SuggestDelete, 0.9))
	r.Add(candidate("/arch/a", models.SuggestArchive, 0.7))
	r.Add(candidate("/del/d", models.SuggestDelete, 0.95))

	want := []string{"/del/d", "/del/c", "/arch/a", "/arch/b", "/keep/a"}
	if got := paths(r.All()); !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

func TestRankTieBreakByPath(t *testing.T) {
	r := New()
	r.Add(candidate("/b", models.SuggestArchive, 0.5))
	r.Add(candidate("/a", models.SuggestArchive, 0.5))
	r.Add(candidate("/c", models.SuggestArchive, 0.5))

	want := []string{"/a", "/b", "/c"}
	if got := paths(r.All()); !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want path-ascending tie-break %v", got, want)
	}
}

func TestRankStableUnderInsertionOrder(t *testing.T) {
	// Identical candidate sets inserted in shuffled orders must produce
	// identical views: determinism is a contract, not an accident.
	build := func(seed int64) []string {
		cands := []*models.Candidate{
			candidate("/x/1", models.SuggestDelete, 0.9),
			candidate("/x/2", models.SuggestArchive, 0.6),
			candidate("/x/3", models.SuggestArchive, 0.6),
			candidate("/x/4", models.SuggestKeep, 0.05),
			candidate("/x/5", models.SuggestDelete, 0.99),
			candidate("/x/6", models.SuggestKeep, 0.2),
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })

		r := New()
		for _, c := range cands {
			r.Add(c)
		}
		return paths(r.All())
	}

	first := build(1)
	for seed := int64(2); seed <= 10; seed++ {
		if got := build(seed); !reflect.DeepEqual(got, first) {
			t.Fatalf("ordering differs under insertion order: %v vs %v", got, first)
		}
	}
}

func TestTopK(t *testing.T) {
	r := New()
	r.Add(candidate("/a", models.SuggestArchive, 0.4))
	r.Add(candidate("/b", models.SuggestArchive, 0.8))
	r.Add(candidate("/c", models.SuggestArchive, 0.6))
	r.Add(candidate("/d", models.SuggestDelete, 0.9))

	got := paths(r.TopK(models.SuggestArchive, 2))
	want := []string{"/b", "/c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK(archive, 2) = %v, want %v", got, want)
	}
}

func TestLargestAndOldest(t *testing.T) {
	r := New()
	big := candidate("/big", models.SuggestKeep, 0.1)
	big.Entry.Size = 1 << 30
	idle := candidate("/idle", models.SuggestKeep, 0.1)
	idle.Signal.IdleDays = 500
	small := candidate("/small", models.SuggestKeep, 0.1)
	small.Entry.Size = 10

	r.Add(small)
	r.Add(big)
	r.Add(idle)

	if got := paths(r.Largest(1)); !reflect.DeepEqual(got, []string{"/big"}) {
		t.Errorf("Largest(1) = %v, want [/big]", got)
	}
	if got := paths(r.Oldest(1)); !reflect.DeepEqual(got, []string{"/idle"}) {
		t.Errorf("Oldest(1) = %v, want [/idle]", got)
	}
}

func TestListFilterSortPage(t *testing.T) {
	r := New()
	r.Add(candidate("/a", models.SuggestArchive, 0.5))
	r.Add(candidate("/b", models.SuggestArchive, 0.7))
	r.Add(candidate("/c", models.SuggestDelete, 0.9))
	r.Add(candidate("/d", models.SuggestKeep, 0.1))

	t.Run("filter by suggestion", func(t *testing.T) {
		got := paths(r.List(ListOptions{Suggestion: models.SuggestArchive}))
		if !reflect.DeepEqual(got, []string{"/b", "/a"}) {
			t.Errorf("List(archive) = %v", got)
		}
	})

	t.Run("min score", func(t *testing.T) {
		got := paths(r.List(ListOptions{MinScore: 0.6}))
		if !reflect.DeepEqual(got, []string{"/c", "/b"}) {
			t.Errorf("List(minScore 0.6) = %v", got)
		}
	})

	t.Run("sort by path", func(t *testing.T) {
		got := paths(r.List(ListOptions{SortBy: SortByPath}))
		if !reflect.DeepEqual(got, []string{"/a", "/b", "/c", "/d"}) {
			t.Errorf("List(by path) = %v", got)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		first := paths(r.List(ListOptions{PerPage: 2, Page: 1}))
		second := paths(r.List(ListOptions{PerPage: 2, Page: 2}))
		if len(first) != 2 || len(second) != 2 {
			t.Fatalf("pages = %v / %v, want 2 each", first, second)
		}
		beyond := r.List(ListOptions{PerPage: 2, Page: 3})
		if len(beyond) != 0 {
			t.Errorf("page beyond end = %v, want empty", beyond)
		}
	})
}

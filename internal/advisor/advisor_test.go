package advisor

import (
	"strings"
	"testing"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

func TestMapModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"haiku", "claude-3-5-haiku-latest"},
		{"Sonnet", "claude-sonnet-4-20250514"},
		{"opus", "claude-opus-4-20250514"},
		{"unknown", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := mapModelName(tt.in); got != tt.want {
			t.Errorf("mapModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitNumbered(t *testing.T) {
	tests := []struct {
		line     string
		wantNum  int
		wantRest string
		wantOK   bool
	}{
		{"1. safe to delete", 1, "safe to delete", true},
		{"12: big and idle", 12, "big and idle", true},
		{"3) old backup", 3, "old backup", true},
		{"no number here", 0, "", false},
		{"", 0, "", false},
		{"42", 0, "", false},
	}
	for _, tt := range tests {
		num, rest, ok := splitNumbered(tt.line)
		if num != tt.wantNum || rest != tt.wantRest || ok != tt.wantOK {
			t.Errorf("splitNumbered(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.line, num, rest, ok, tt.wantNum, tt.wantRest, tt.wantOK)
		}
	}
}

func TestParseNotes(t *testing.T) {
	candidates := []*models.Candidate{
		{ID: "aaa"},
		{ID: "bbb"},
	}

	text := "1. First file is an old download.\n\nsome preamble\n2. Second file is a log.\n9. out of range\n"
	notes := parseNotes(text, candidates)

	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].CandidateID != "aaa" || notes[0].Explanation != "First file is an old download." {
		t.Errorf("note 0 = %+v", notes[0])
	}
	if notes[1].CandidateID != "bbb" {
		t.Errorf("note 1 attached to %s, want bbb", notes[1].CandidateID)
	}
}

func TestBuildPromptNumbersEveryCandidate(t *testing.T) {
	candidates := []*models.Candidate{
		{ID: "a", Entry: &models.FileEntry{Path: "/x/a.zip", Size: 1 << 30}, Signal: models.Signal{AgeDays: 100, IdleDays: 90}, Suggestion: models.SuggestArchive},
		{ID: "b", Entry: &models.FileEntry{Path: "/x/b.log", Size: 512}, Signal: models.Signal{AgeDays: 10, IdleDays: 10}, Suggestion: models.SuggestDelete},
	}

	prompt := buildPrompt(candidates)
	for _, want := range []string{"1. /x/a.zip", "2. /x/b.log", "suggested: archive", "suggested: delete"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

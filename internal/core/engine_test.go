package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

func testConfig(t *testing.T, roots ...string) *config.Config {
	t.Helper()
	return &config.Config{
		Roots:            roots,
		Workers:          4,
		AgeWeight:        0.25,
		IdleWeight:       0.45,
		SizeWeight:       0.30,
		KeepThreshold:    0.30,
		ArchiveThreshold: 0.85,
		SizeBuckets:      models.DefaultSizeBuckets(),
		ArchiveDir:       filepath.Join(t.TempDir(), "archive"),
		KeepSkips:        true,
	}
}

func writeAged(t *testing.T, root, rel string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func scan(t *testing.T, cfg *config.Config) *ScanRun {
	t.Helper()
	engine, err := NewEngine(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	run, err := engine.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return run
}

func TestScanAccountsForEveryFile(t *testing.T) {
	root := t.TempDir()
	files := []string{"a.txt", "b/c.log", "b/d.tmp", "e/f/g.bin"}
	for _, rel := range files {
		writeAged(t, root, rel, 10, 0)
	}

	run := scan(t, testConfig(t, root))
	report := run.Report()

	seen := make(map[string]bool)
	for _, c := range report.Candidates {
		seen[c.Entry.Path] = true
	}
	for _, rec := range report.Skips {
		seen[rec.Path] = true
	}
	for _, rel := range files {
		if !seen[filepath.Join(root, rel)] {
			t.Errorf("file %s is in neither candidates nor skips", rel)
		}
	}
	if report.Stats.DirsVisited != 3 { // b, e, e/f (the root itself is not an entry)
		t.Errorf("DirsVisited = %d, want 3", report.Stats.DirsVisited)
	}
	if report.Partial || report.Cancelled {
		t.Error("complete run marked partial or cancelled")
	}
}

func TestScanDeterministicOrdering(t *testing.T) {
	root := t.TempDir()
	stamp := time.Now().Add(-100 * 24 * time.Hour)
	for _, rel := range []string{"z.dat", "m/a.dat", "m/b.dat", "k.dat"} {
		path := writeAged(t, root, rel, 2048, 0)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig(t, root)
	first := scan(t, cfg)
	second := scan(t, cfg)

	a, b := first.Report().Candidates, second.Report().Candidates
	if len(a) != len(b) {
		t.Fatalf("candidate counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("order diverges at %d: %s vs %s", i, a[i].Entry.Path, b[i].Entry.Path)
		}
		if a[i].Score != b[i].Score || a[i].Suggestion != b[i].Suggestion {
			t.Errorf("scores diverge for %s", a[i].Entry.Path)
		}
	}
}

func TestScanMinSizeFilter(t *testing.T) {
	root := t.TempDir()
	writeAged(t, root, "small.txt", 10, 0)
	big := writeAged(t, root, "big.bin", 4096, 0)

	cfg := testConfig(t, root)
	cfg.MinSizeBytes = 1024
	run := scan(t, cfg)
	report := run.Report()

	if len(report.Candidates) != 1 || report.Candidates[0].Entry.Path != big {
		t.Fatalf("candidates = %v, want only big.bin", report.Candidates)
	}
	found := false
	for _, rec := range report.Skips {
		if filepath.Base(rec.Path) == "small.txt" {
			found = true
			if rec.Reason != models.SkipBelowMinSize {
				t.Errorf("skip reason = %s, want %s", rec.Reason, models.SkipBelowMinSize)
			}
		}
	}
	if !found {
		t.Error("small.txt has no skip record")
	}
}

func TestScanProfileNarrowsCandidates(t *testing.T) {
	root := t.TempDir()
	writeAged(t, root, "build.tmp", 100, 10*24*time.Hour)
	writeAged(t, root, "thesis.pdf", 100, 400*24*time.Hour)

	cfg := testConfig(t, root)
	cfg.Profile = "temp-files"
	run := scan(t, cfg)
	report := run.Report()

	if len(report.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(report.Candidates))
	}
	if base := filepath.Base(report.Candidates[0].Entry.Path); base != "build.tmp" {
		t.Errorf("candidate = %s, want build.tmp", base)
	}
	for _, rec := range report.Skips {
		if filepath.Base(rec.Path) == "thesis.pdf" && rec.Reason != models.SkipExcluded {
			t.Errorf("thesis.pdf skip reason = %s, want %s", rec.Reason, models.SkipExcluded)
		}
	}
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.txt", "b.txt", "c/d.txt"} {
		writeAged(t, root, rel, 10, 0)
	}

	engine, err := NewEngine(testConfig(t, root), zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := engine.Scan(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan = %v, want context.Canceled", err)
	}
	if run == nil {
		t.Fatal("cancelled scan returned no partial run")
	}
	report := run.Report()
	if !report.Cancelled || !report.Partial {
		t.Errorf("Cancelled=%v Partial=%v, want both true", report.Cancelled, report.Partial)
	}
}

func TestScanRootDisappears(t *testing.T) {
	root := t.TempDir()
	gone := filepath.Join(root, "gone")
	if err := os.Mkdir(gone, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t, root, gone)
	engine, err := NewEngine(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Passes validation, vanishes before the walk reaches it.
	if err := os.RemoveAll(gone); err != nil {
		t.Fatal(err)
	}

	run, err := engine.Scan(context.Background())
	var abort *AbortError
	if !errors.As(err, &abort) {
		t.Fatalf("Scan = %v, want AbortError", err)
	}
	if run == nil || !run.Report().Partial {
		t.Error("aborted scan should carry a partial report")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.AgeWeight = -1
	if _, err := NewEngine(cfg, zap.NewNop()); err == nil {
		t.Fatal("NewEngine accepted negative weight")
	}
}

func TestNewEngineRejectsUnknownProfile(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Profile = "no-such-profile"
	if _, err := NewEngine(cfg, zap.NewNop()); err == nil {
		t.Fatal("NewEngine accepted unknown profile")
	}
}

func TestNewEngineRejectsBrokenProfileOverrides(t *testing.T) {
	tests := []struct {
		name    string
		profile string
	}{
		{
			"zero weight sum",
			"profiles:\n" +
				"  - name: zeroed\n" +
				"    patterns: [\"*\"]\n" +
				"    weights:\n" +
				"      age: 0\n" +
				"      idle: 0\n" +
				"      size: 0\n",
		},
		{
			"inverted thresholds",
			"profiles:\n" +
				"  - name: zeroed\n" +
				"    patterns: [\"*\"]\n" +
				"    thresholds:\n" +
				"      keep: 0.9\n" +
				"      archive: 0.1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "zeroed.yaml"), []byte(tt.profile), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg := testConfig(t, t.TempDir())
			cfg.ProfilesPath = dir
			cfg.Profile = "zeroed"

			if _, err := NewEngine(cfg, zap.NewNop()); err == nil {
				t.Fatal("NewEngine accepted a profile whose overrides fail scoring validation")
			}
		})
	}
}

func TestScanCandidateListMatchesStats(t *testing.T) {
	root := t.TempDir()
	writeAged(t, root, "fresh.txt", 10, 0)
	writeAged(t, root, "old.dat", 2048, 400*24*time.Hour)
	writeAged(t, root, "sub/older.bin", 4096, 500*24*time.Hour)

	run := scan(t, testConfig(t, root))
	report := run.Report()

	total := report.Stats.KeepCount + report.Stats.ArchiveCount + report.Stats.DeleteCount
	if total != len(report.Candidates) {
		t.Errorf("category counts sum to %d, candidates = %d", total, len(report.Candidates))
	}
	if report.Stats.EntriesVisited != len(report.Candidates) {
		t.Errorf("EntriesVisited = %d, candidates = %d", report.Stats.EntriesVisited, len(report.Candidates))
	}

	seen := make(map[string]bool)
	for _, c := range report.Candidates {
		if seen[c.ID] {
			t.Errorf("candidate %s appears twice", c.Entry.Path)
		}
		seen[c.ID] = true
	}
}

func TestConfirmAndExecuteArchivesFile(t *testing.T) {
	root := t.TempDir()
	// Old enough to land in the archive band.
	path := writeAged(t, root, "dusty.dat", 2048, 400*24*time.Hour)

	cfg := testConfig(t, root)
	run := scan(t, cfg)
	report := run.Report()

	if len(report.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(report.Candidates))
	}
	c := report.Candidates[0]
	if c.Suggestion != models.SuggestArchive {
		t.Fatalf("suggestion = %s, want %s", c.Suggestion, models.SuggestArchive)
	}

	// No shortcut from suggested to executed.
	if err := run.Execute(context.Background(), c.ID); err == nil {
		t.Fatal("Execute succeeded without confirmation")
	}

	if err := run.Confirm(c.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := run.Execute(context.Background(), c.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("original still exists after archiving")
	}
	if c.ArchivedLocation == "" {
		t.Fatal("ArchivedLocation not recorded")
	}
	if _, err := os.Stat(c.ArchivedLocation); err != nil {
		t.Errorf("archived copy missing: %v", err)
	}
	if c.Disposition != models.DispositionExecuted {
		t.Errorf("disposition = %s, want %s", c.Disposition, models.DispositionExecuted)
	}
}

func TestScanSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeAged(t, root, "a/file.txt", 10, 0)
	if err := os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "a", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg := testConfig(t, root)
	cfg.MaxSymlinkFollowDepth = 4

	engine, err := NewEngine(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	type outcome struct {
		run *ScanRun
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		run, err := engine.Scan(context.Background())
		done <- outcome{run, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatalf("Scan: %v", out.err)
		}
		if out.run.Report().Stats.EntriesVisited == 0 {
			t.Error("cycle scan visited nothing")
		}
	case <-time.After(30 * time.Second):
		t.Fatal("scan did not terminate on a symlink cycle")
	}
}

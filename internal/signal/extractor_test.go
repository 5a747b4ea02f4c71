package signal

import (
	"testing"
	"time"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func extract(entry *models.FileEntry) models.Signal {
	e := NewExtractor(testNow, models.DefaultSizeBuckets())
	return e.Extract(entry)
}

func TestExtractAgeDays(t *testing.T) {
	tests := []struct {
		name string
		mod  time.Time
		want int
	}{
		{"just created", testNow, 0},
		{"under one day", testNow.Add(-23 * time.Hour), 0},
		{"exactly 400 days", testNow.AddDate(0, 0, -400), 400},
		{"future timestamp clamps to zero", testNow.Add(48 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := extract(&models.FileEntry{ModTime: tt.mod, AccessTime: tt.mod})
			if sig.AgeDays != tt.want {
				t.Errorf("AgeDays = %d, want %d", sig.AgeDays, tt.want)
			}
			if sig.AgeDays < 0 || sig.IdleDays < 0 {
				t.Error("day counts must never be negative")
			}
		})
	}
}

func TestExtractIdleFallback(t *testing.T) {
	mod := testNow.AddDate(0, 0, -100)

	t.Run("atime equals mtime", func(t *testing.T) {
		sig := extract(&models.FileEntry{ModTime: mod, AccessTime: mod})
		if sig.AtimeReliable {
			t.Error("atime == mtime should be flagged unreliable")
		}
		if sig.IdleDays != sig.AgeDays {
			t.Errorf("IdleDays = %d, want fallback to AgeDays %d", sig.IdleDays, sig.AgeDays)
		}
	})

	t.Run("atime within tolerance", func(t *testing.T) {
		sig := extract(&models.FileEntry{ModTime: mod, AccessTime: mod.Add(time.Second)})
		if sig.AtimeReliable {
			t.Error("atime within tolerance should be flagged unreliable")
		}
	})

	t.Run("atime missing", func(t *testing.T) {
		sig := extract(&models.FileEntry{ModTime: mod})
		if sig.AtimeReliable {
			t.Error("zero atime should be flagged unreliable")
		}
		if sig.IdleDays != sig.AgeDays {
			t.Errorf("IdleDays = %d, want %d", sig.IdleDays, sig.AgeDays)
		}
	})

	t.Run("meaningful atime", func(t *testing.T) {
		sig := extract(&models.FileEntry{ModTime: mod, AccessTime: testNow.AddDate(0, 0, -10)})
		if !sig.AtimeReliable {
			t.Error("distinct atime should be reliable")
		}
		if sig.IdleDays != 10 {
			t.Errorf("IdleDays = %d, want 10", sig.IdleDays)
		}
	})
}

func TestExtractIdleCanExceedAge(t *testing.T) {
	// A touched-but-unread file: mtime fresh, atime stale. Expected, not a
	// bug.
	sig := extract(&models.FileEntry{
		ModTime:    testNow.AddDate(0, 0, -1),
		AccessTime: testNow.AddDate(0, 0, -200),
	})
	if sig.IdleDays <= sig.AgeDays {
		t.Errorf("IdleDays = %d, AgeDays = %d; idle should exceed age here", sig.IdleDays, sig.AgeDays)
	}
}

func TestExtractSizeClass(t *testing.T) {
	tests := []struct {
		size int64
		want models.SizeClass
	}{
		{0, models.SizeTiny},
		{1<<20 - 1, models.SizeTiny},
		{1 << 20, models.SizeSmall},
		{10 << 20, models.SizeSmall},
		{100 << 20, models.SizeMedium},
		{1 << 30, models.SizeLarge},
		{10 * (1 << 30), models.SizeHuge},
	}

	for _, tt := range tests {
		sig := extract(&models.FileEntry{Size: tt.size, ModTime: testNow, AccessTime: testNow})
		if sig.Class != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.size, sig.Class, tt.want)
		}
	}
}

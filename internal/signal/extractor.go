// Package signal derives normalized cleanup signals from raw file
// metadata. Extraction is a pure function of one entry and a fixed
// reference time, so a whole scan run shares a single "now" and stays
// deterministic.
package signal

import (
	"time"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// atimeTolerance is the window within which access time is treated as a
// mirror of modification time. relatime and noatime mounts leave atime
// pinned at (or updated together with) mtime, which would fake idleness.
const atimeTolerance = 2 * time.Second

// Extractor computes signals against one reference time and one bucket
// configuration.
type Extractor struct {
	now     time.Time
	buckets models.SizeBuckets
}

// NewExtractor creates an extractor with a fixed reference time.
func NewExtractor(now time.Time, buckets models.SizeBuckets) *Extractor {
	return &Extractor{now: now, buckets: buckets}
}

// Extract computes the Signal for one entry.
//
// Age and idle deltas are clamped at zero: future timestamps come from
// clock skew and must not produce negative days. Idle days can legitimately
// exceed age days when a file was touched without being read.
func (e *Extractor) Extract(entry *models.FileEntry) models.Signal {
	age := daysBetween(entry.ModTime, e.now)

	idle := age
	reliable := false
	if atimeMeaningful(entry.AccessTime, entry.ModTime) {
		idle = daysBetween(entry.AccessTime, e.now)
		reliable = true
	}

	return models.Signal{
		AgeDays:       age,
		IdleDays:      idle,
		Class:         e.buckets.Classify(entry.Size),
		AtimeReliable: reliable,
	}
}

// daysBetween is floor((to - from) / 24h), clamped to >= 0.
func daysBetween(from, to time.Time) int {
	delta := to.Sub(from)
	if delta < 0 {
		return 0
	}
	return int(delta / (24 * time.Hour))
}

// atimeMeaningful applies the relatime heuristic: an access time missing
// or within tolerance of the modification time carries no idle
// information.
func atimeMeaningful(atime, mtime time.Time) bool {
	if atime.IsZero() {
		return false
	}
	delta := atime.Sub(mtime)
	if delta < 0 {
		delta = -delta
	}
	return delta > atimeTolerance
}

package models

import "time"

// ScanReport is the complete result set of one traversal-and-scoring run.
// It is owned by the run that produced it and immutable once the scan
// completes; the next scan supersedes it, they are never merged.
type ScanReport struct {
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Roots     []string      `json:"roots" yaml:"roots"`

	Candidates []*Candidate `json:"candidates" yaml:"candidates"`
	Skips      []SkipRecord `json:"skips,omitempty" yaml:"skips,omitempty"`

	Stats ScanStatistics `json:"statistics" yaml:"statistics"`

	// Cancelled marks a run that was stopped before completing; its
	// contents are an explicit partial result, not a silent truncation.
	Cancelled bool `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Partial   bool `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// ScanStatistics aggregates the run.
type ScanStatistics struct {
	EntriesVisited int   `json:"entries_visited" yaml:"entries_visited"`
	DirsVisited    int   `json:"dirs_visited" yaml:"dirs_visited"`
	EntriesSkipped int   `json:"entries_skipped" yaml:"entries_skipped"`
	BytesScanned   int64 `json:"bytes_scanned" yaml:"bytes_scanned"`

	KeepCount    int `json:"keep_count" yaml:"keep_count"`
	ArchiveCount int `json:"archive_count" yaml:"archive_count"`
	DeleteCount  int `json:"delete_count" yaml:"delete_count"`

	// Reclaimable bytes per actionable suggestion.
	ArchiveBytes int64 `json:"archive_bytes" yaml:"archive_bytes"`
	DeleteBytes  int64 `json:"delete_bytes" yaml:"delete_bytes"`

	// Per type-group statistics (Image, Video, Log, ...).
	ByTypeGroup map[string]TypeGroupStats `json:"by_type_group,omitempty" yaml:"by_type_group,omitempty"`

	// Disk usage of each root's filesystem at scan time.
	DiskUsage map[string]DiskUsage `json:"disk_usage,omitempty" yaml:"disk_usage,omitempty"`

	WorkersUsed int `json:"workers_used" yaml:"workers_used"`
}

// TypeGroupStats counts candidates of one coarse file type group.
type TypeGroupStats struct {
	Count int   `json:"count" yaml:"count"`
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// DiskUsage is a snapshot of the filesystem backing a scan root.
type DiskUsage struct {
	TotalBytes  uint64  `json:"total_bytes" yaml:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes" yaml:"free_bytes"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// AddCandidate appends a scored candidate and updates the aggregates.
func (r *ScanReport) AddCandidate(c *Candidate) {
	r.Candidates = append(r.Candidates, c)
	r.TallyCandidate(c)
}

// TallyCandidate updates the aggregates for a candidate whose place in
// the Candidates slice is managed by the caller.
func (r *ScanReport) TallyCandidate(c *Candidate) {
	r.Stats.BytesScanned += c.Entry.Size

	switch c.Suggestion {
	case SuggestKeep:
		r.Stats.KeepCount++
	case SuggestArchive:
		r.Stats.ArchiveCount++
		r.Stats.ArchiveBytes += c.Entry.Size
	case SuggestDelete:
		r.Stats.DeleteCount++
		r.Stats.DeleteBytes += c.Entry.Size
	}

	group := TypeGroup(c.Entry.Path)
	if r.Stats.ByTypeGroup == nil {
		r.Stats.ByTypeGroup = make(map[string]TypeGroupStats)
	}
	gs := r.Stats.ByTypeGroup[group]
	gs.Count++
	gs.Bytes += c.Entry.Size
	r.Stats.ByTypeGroup[group] = gs
}

// AddSkip records a path that was touched but dropped.
func (r *ScanReport) AddSkip(rec SkipRecord) {
	r.Skips = append(r.Skips, rec)
	r.Stats.EntriesSkipped++
}

// CandidateByID returns the candidate with the given ID, or nil.
func (r *ScanReport) CandidateByID(id string) *Candidate {
	for _, c := range r.Candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

package models

import (
	"time"
)

// FileEntry contains the raw metadata for one visited path.
// Entries are immutable after creation: a re-scan produces fresh entries,
// it never patches old ones.
type FileEntry struct {
	Path          string    `json:"path" yaml:"path"` // canonical absolute path
	Size          int64     `json:"size" yaml:"size"`
	ModTime       time.Time `json:"mod_time" yaml:"mod_time"`
	AccessTime    time.Time `json:"access_time" yaml:"access_time"`
	IsDir         bool      `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
	IsSymlink     bool      `json:"is_symlink,omitempty" yaml:"is_symlink,omitempty"`
	IsHidden      bool      `json:"is_hidden,omitempty" yaml:"is_hidden,omitempty"`
	OutsideRoot   bool      `json:"outside_root,omitempty" yaml:"outside_root,omitempty"` // symlink target resolves outside the scan root
	ParentModTime time.Time `json:"-" yaml:"-"`                                           // mtime of the containing directory
}

// SkipReason explains why a path was dropped from the scan.
type SkipReason string

const (
	SkipNotFound         SkipReason = "not_found"
	SkipPermissionDenied SkipReason = "permission_denied"
	SkipTransient        SkipReason = "transient"
	SkipCycle            SkipReason = "cycle"
	SkipExcluded         SkipReason = "excluded"
	SkipBelowMinSize     SkipReason = "below_min_size"
	SkipHidden           SkipReason = "hidden"
)

// SkipRecord accounts for a path the walker touched but did not score.
// Every path ends up either scored, skipped with a reason, or marked as an
// execution failure; silent loss is not allowed.
type SkipRecord struct {
	Path   string     `json:"path" yaml:"path"`
	Reason SkipReason `json:"reason" yaml:"reason"`
	Detail string     `json:"detail,omitempty" yaml:"detail,omitempty"`
}

package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// ProbeErrorKind classifies per-entry metadata failures.
type ProbeErrorKind int

const (
	// ProbeNotFound: the entry vanished between listing and stat. Terminal.
	ProbeNotFound ProbeErrorKind = iota
	// ProbePermissionDenied: the entry is unreadable. Terminal.
	ProbePermissionDenied
	// ProbeTransient: anything else; retried once before becoming a skip.
	ProbeTransient
)

// ProbeError wraps a stat failure with its classification.
type ProbeError struct {
	Path string
	Kind ProbeErrorKind
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// SkipReason maps the probe failure onto the report's skip taxonomy.
func (e *ProbeError) SkipReason() models.SkipReason {
	switch e.Kind {
	case ProbeNotFound:
		return models.SkipNotFound
	case ProbePermissionDenied:
		return models.SkipPermissionDenied
	default:
		return models.SkipTransient
	}
}

// Probe reads per-entry OS metadata. By default it reports a symlink's own
// metadata rather than the target's: a stale target must never make an
// actively referenced link look disposable.
type Probe struct {
	followSymlinks bool
	retryDelay     time.Duration
	logger         *zap.Logger
}

// NewProbe creates a metadata probe.
func NewProbe(followSymlinks bool, logger *zap.Logger) *Probe {
	return &Probe{
		followSymlinks: followSymlinks,
		retryDelay:     50 * time.Millisecond,
		logger:         logger,
	}
}

// Stat resolves a raw walker entry into an immutable FileEntry. A
// transient failure is retried once after a short fixed backoff; NotFound
// and PermissionDenied are terminal for the entry.
func (p *Probe) Stat(raw RawEntry) (*models.FileEntry, error) {
	entry, err := p.statOnce(raw)
	if err == nil {
		return entry, nil
	}

	var perr *ProbeError
	if errors.As(err, &perr) && perr.Kind == ProbeTransient {
		p.logger.Debug("Transient probe failure, retrying",
			zap.String("path", raw.Path),
			zap.Error(perr.Err))
		time.Sleep(p.retryDelay)
		if entry, retryErr := p.statOnce(raw); retryErr == nil {
			return entry, nil
		}
	}

	return nil, err
}

func (p *Probe) statOnce(raw RawEntry) (*models.FileEntry, error) {
	info, err := os.Lstat(raw.Path)
	if err != nil {
		return nil, classify(raw.Path, err)
	}

	isSymlink := info.Mode()&os.ModeSymlink != 0
	if isSymlink && p.followSymlinks {
		// Explicitly configured: attribute the target's metadata to the
		// link. A dangling target falls back to the link itself.
		if target, terr := os.Stat(raw.Path); terr == nil {
			info = target
		}
	}

	canonical, err := filepath.Abs(raw.Path)
	if err != nil {
		canonical = filepath.Clean(raw.Path)
	}

	return &models.FileEntry{
		Path:          canonical,
		Size:          info.Size(),
		ModTime:       info.ModTime(),
		AccessTime:    accessTime(info),
		IsDir:         raw.IsDir,
		IsSymlink:     isSymlink,
		IsHidden:      isHidden(filepath.Base(canonical)),
		OutsideRoot:   raw.OutsideRoot,
		ParentModTime: raw.ParentModTime,
	}, nil
}

// classify maps an OS error onto the probe taxonomy.
func classify(path string, err error) *ProbeError {
	kind := ProbeTransient
	switch {
	case os.IsNotExist(err):
		kind = ProbeNotFound
	case os.IsPermission(err):
		kind = ProbePermissionDenied
	}
	return &ProbeError{Path: path, Kind: kind, Err: err}
}

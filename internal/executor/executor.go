// Package executor implements the action primitives behind confirmed
// candidates: moving a file into the local archive or deleting it. It is
// the only package that destroys data, so every operation re-checks the
// target before touching it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// lockRetryDelay paces TryLockContext polls on the archive lock.
const lockRetryDelay = 50 * time.Millisecond

// ErrorKind classifies action failures for reporting.
type ErrorKind string

const (
	ErrPermissionDenied  ErrorKind = "permission_denied"
	ErrFileNotFound      ErrorKind = "file_not_found"
	ErrInsufficientSpace ErrorKind = "insufficient_space"
	ErrFileInUse         ErrorKind = "file_in_use"
	ErrInternal          ErrorKind = "internal"
)

// ActionError wraps an action failure with its classification.
type ActionError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// classify maps OS errors onto the action error taxonomy.
func classify(path string, err error) *ActionError {
	kind := ErrInternal
	switch {
	case errors.Is(err, os.ErrNotExist):
		kind = ErrFileNotFound
	case errors.Is(err, os.ErrPermission):
		kind = ErrPermissionDenied
	case isNoSpace(err):
		kind = ErrInsufficientSpace
	}
	return &ActionError{Kind: kind, Path: path, Err: err}
}

// Local performs actions on the local filesystem. The archive directory is
// created lazily and guarded by a file lock so concurrent runs do not race
// on collision-free names.
type Local struct {
	archiveDir string
	logger     *zap.Logger
}

// NewLocal creates an executor that archives into archiveDir.
func NewLocal(archiveDir string, logger *zap.Logger) *Local {
	return &Local{archiveDir: archiveDir, logger: logger}
}

// Archive moves path into the archive directory and returns the new
// location. Name collisions get a numeric suffix before the extension, so
// repeated archives of files named report.pdf land as report.pdf,
// report_1.pdf, report_2.pdf and so on.
func (l *Local) Archive(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return "", classify(path, err)
	}
	if info.IsDir() {
		return "", &ActionError{Kind: ErrInternal, Path: path, Err: errors.New("refusing to archive a directory")}
	}

	if err := os.MkdirAll(l.archiveDir, 0o755); err != nil {
		return "", classify(l.archiveDir, err)
	}

	lock := flock.New(filepath.Join(l.archiveDir, ".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", classify(l.archiveDir, err)
	}
	if !locked {
		return "", &ActionError{Kind: ErrFileInUse, Path: l.archiveDir, Err: errors.New("archive directory is locked")}
	}
	defer lock.Unlock()

	dest := l.collisionFreeName(filepath.Base(path))
	if err := moveFile(path, dest, info.Mode()); err != nil {
		return "", classify(path, err)
	}

	l.logger.Info("Archived file",
		zap.String("from", path),
		zap.String("to", dest))
	return dest, nil
}

// Delete removes path permanently. The parent directory must be writable,
// otherwise the removal would fail halfway into the operation.
func (l *Local) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return classify(path, err)
	}
	if info.IsDir() {
		return &ActionError{Kind: ErrInternal, Path: path, Err: errors.New("refusing to delete a directory")}
	}

	parent := filepath.Dir(path)
	if err := checkWritable(parent); err != nil {
		return &ActionError{Kind: ErrPermissionDenied, Path: path, Err: err}
	}

	if err := os.Remove(path); err != nil {
		return classify(path, err)
	}

	l.logger.Info("Deleted file", zap.String("path", path))
	return nil
}

// collisionFreeName picks the first unused name in the archive directory.
func (l *Local) collisionFreeName(base string) string {
	candidate := filepath.Join(l.archiveDir, base)
	if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate
	}

	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	for i := 1; ; i++ {
		candidate = filepath.Join(l.archiveDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// moveFile renames when possible and falls back to copy-and-remove when
// source and destination live on different devices.
func moveFile(src, dest string, mode os.FileMode) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return os.Remove(src)
}

// checkWritable probes a directory for write access by creating and
// removing a temporary file.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".trashdoctor-*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestArchiveMovesFile(t *testing.T) {
	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	local := NewLocal(archive, zap.NewNop())

	path := writeTempFile(t, src, "report.pdf", "payload")
	dest, err := local.Archive(context.Background(), path)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if dest != filepath.Join(archive, "report.pdf") {
		t.Errorf("dest = %q", dest)
	}
	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("original still exists after archive")
	}
	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading archived copy: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("archived content = %q", content)
	}
}

func TestArchiveCollisionNaming(t *testing.T) {
	src := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	local := NewLocal(archive, zap.NewNop())

	want := []string{"report.pdf", "report_1.pdf", "report_2.pdf"}
	for i, name := range want {
		path := writeTempFile(t, src, "report.pdf", "v")
		dest, err := local.Archive(context.Background(), path)
		if err != nil {
			t.Fatalf("Archive #%d: %v", i, err)
		}
		if got := filepath.Base(dest); got != name {
			t.Errorf("archive #%d landed as %q, want %q", i, got, name)
		}
	}
}

func TestArchiveMissingFile(t *testing.T) {
	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())

	_, err := local.Archive(context.Background(), filepath.Join(t.TempDir(), "ghost.txt"))
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("got %v, want ActionError", err)
	}
	if actionErr.Kind != ErrFileNotFound {
		t.Errorf("kind = %s, want %s", actionErr.Kind, ErrFileNotFound)
	}
}

func TestArchiveRefusesDirectory(t *testing.T) {
	src := t.TempDir()
	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())

	if _, err := local.Archive(context.Background(), src); err == nil {
		t.Fatal("archiving a directory succeeded")
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	src := t.TempDir()
	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())

	path := writeTempFile(t, src, "core.dump", "x")
	if err := local.Delete(context.Background(), path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("file still exists after delete")
	}
}

func TestDeleteMissingFile(t *testing.T) {
	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())

	err := local.Delete(context.Background(), filepath.Join(t.TempDir(), "ghost.txt"))
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("got %v, want ActionError", err)
	}
	if actionErr.Kind != ErrFileNotFound {
		t.Errorf("kind = %s, want %s", actionErr.Kind, ErrFileNotFound)
	}
}

func TestDeleteUnwritableParent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	src := t.TempDir()
	path := writeTempFile(t, src, "locked.txt", "x")
	if err := os.Chmod(src, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(src, 0o755) })

	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())
	err := local.Delete(context.Background(), path)
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("got %v, want ActionError", err)
	}
	if actionErr.Kind != ErrPermissionDenied {
		t.Errorf("kind = %s, want %s", actionErr.Kind, ErrPermissionDenied)
	}
}

func TestCancelledContext(t *testing.T) {
	src := t.TempDir()
	local := NewLocal(filepath.Join(t.TempDir(), "archive"), zap.NewNop())
	path := writeTempFile(t, src, "doc.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := local.Archive(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("Archive with cancelled ctx = %v, want context.Canceled", err)
	}
	if err := local.Delete(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("Delete with cancelled ctx = %v, want context.Canceled", err)
	}
	if _, err := os.Lstat(path); err != nil {
		t.Error("file was touched despite cancelled context")
	}
}

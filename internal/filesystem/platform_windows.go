//go:build windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileID identifies a file independently of the path that reached it.
// Windows has no cheap inode equivalent here, so the canonical path hash
// stands in; junction cycles are still caught through the follow budget.
type fileID struct {
	dev uint64
	ino uint64
}

// fileIdentity derives the identity from the canonical path (Windows).
func fileIdentity(info os.FileInfo, path string) fileID {
	return fileID{dev: 0, ino: hashPath(path)}
}

// accessTime extracts the last access time from FileInfo (Windows).
func accessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, stat.LastAccessTime.Nanoseconds())
	}
	return info.ModTime()
}

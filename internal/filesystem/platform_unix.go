//go:build !windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileID identifies a file independently of the path that reached it.
// On Unix the device and inode pair survives symlink aliasing, which is
// what the cycle guard needs.
type fileID struct {
	dev uint64
	ino uint64
}

// fileIdentity extracts the identity from stat results (Unix).
func fileIdentity(info os.FileInfo, path string) fileID {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return fileID{dev: uint64(stat.Dev), ino: stat.Ino}
	}
	// Fallback identity from the path; good enough without Stat_t.
	return fileID{dev: 0, ino: hashPath(path)}
}

// accessTime extracts atime from stat results (Unix).
func accessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return info.ModTime()
}

//go:build windows

package executor

import (
	"errors"
	"syscall"
)

func isNoSpace(err error) bool {
	return errors.Is(err, syscall.Errno(112)) // ERROR_DISK_FULL
}

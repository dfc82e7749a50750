//go:build !windows

package platform

import (
	"errors"
	"os"
	"syscall"
)

// isCrossDevice reports whether err is the OS's cross-device-link error
// (EXDEV), which os.Rename surfaces when src and dst live on different
// filesystems/volumes.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		if errno, ok := linkErr.Err.(syscall.Errno); ok {
			return errno == syscall.EXDEV
		}
	}
	return false
}

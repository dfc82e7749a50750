//go:build windows

package platform

import (
	"errors"
	"os"
)

// isCrossDevice reports whether err indicates a rename across volumes.
// Windows surfaces this as ERROR_NOT_SAME_DEVICE (17) wrapped in a LinkError.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err.Error() == "The system cannot move the file to a different disk drive."
	}
	return false
}

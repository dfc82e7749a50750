//go:build !windows

package platform

import "syscall"

// processAlive probes liveness with signal 0, which performs error checking
// without actually delivering a signal.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

//go:build windows

package tui

// bestEffortResetTTY is a no-op on Windows: bubbletea's Windows console
// driver restores console modes itself on program exit.
func bestEffortResetTTY() {}

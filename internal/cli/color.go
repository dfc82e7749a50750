// Package cli holds small ambient helpers shared by the catalyst CLI
// subcommands: color-capable status output.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether stdout is an interactive terminal,
// honoring NO_COLOR (https://no-color.org) the way most CLI tools do.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

const (
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorReset  = "\x1b[0m"
)

// Severity picks a color for one of the PASS/WARN/FAIL/SKIP-style statuses
// shared across status/init/update reports.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityFail
)

// Paint wraps text in the given severity's color when color output is
// enabled, and returns text unchanged otherwise.
func Paint(enabled bool, sev Severity, text string) string {
	if !enabled {
		return text
	}
	switch sev {
	case SeverityOK:
		return colorGreen + text + colorReset
	case SeverityWarn:
		return colorYellow + text + colorReset
	case SeverityFail:
		return colorRed + text + colorReset
	default:
		return text
	}
}

// Fprintln writes text as one line to stdout, painted when enabled, for
// subcommands that want to share one code path for both colored and plain
// output.
func Fprintln(enabled bool, sev Severity, text string) {
	fmt.Println(Paint(enabled, sev, text))
}

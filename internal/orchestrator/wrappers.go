package orchestrator

import (
	"fmt"
	"strings"

	"github.com/basket/catalyst/internal/platform"
)

// unixWrapperTemplate tries the per-user install location first, falling
// back to $PATH, and preserves the wrapped binary's exit code.
const unixWrapperTemplate = `#!/bin/bash
exe="$HOME/.claude-hooks/bin/{{BINARY_NAME}}"
if [ ! -x "$exe" ]; then
  exe="{{BINARY_NAME}}"
fi
"$exe" "$@"
exit $?
`

// windowsWrapperTemplate MUST NOT begin with a shebang; it pipes stdin
// through and propagates $LASTEXITCODE.
const windowsWrapperTemplate = `$exe = Join-Path $env:USERPROFILE ".claude-hooks\bin\{{BINARY_NAME}}.exe"
if (-not (Test-Path $exe)) {
  $exe = "{{BINARY_NAME}}.exe"
}
$input | & $exe @args
exit $LASTEXITCODE
`

// WrapperScript renders the platform-appropriate wrapper template for
// binaryName, substituting every {{BINARY_NAME}} placeholder.
func WrapperScript(info platform.Info, binaryName string) string {
	tmpl := unixWrapperTemplate
	if info.Variant == platform.Windows {
		tmpl = windowsWrapperTemplate
	}
	return strings.ReplaceAll(tmpl, "{{BINARY_NAME}}", binaryName)
}

// WrapperFileName returns the wrapper's file name for the given variant,
// e.g. "catalyst-activate.sh" or "catalyst-activate.ps1".
func WrapperFileName(info platform.Info, binaryName string) string {
	return fmt.Sprintf("%s%s", binaryName, info.WrapperExt)
}

const (
	ActivateBinary = "catalyst-activate"
	TrackBinary    = "catalyst-track"
)

// WrapperCommand builds the settings.json command string for binaryName,
// rooted at $CLAUDE_PROJECT_DIR so the wiring survives the project being
// checked out to a different path.
func WrapperCommand(info platform.Info, binaryName string) string {
	return fmt.Sprintf("$CLAUDE_PROJECT_DIR/.claude/hooks/%s", WrapperFileName(info, binaryName))
}

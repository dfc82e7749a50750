// Command catalyst-installer copies the catalyst-activate and
// catalyst-track hook binaries into the canonical install directory
// (internal/orchestrator.BinaryInstallDir), so that `catalyst init`'s
// preflight binary check passes without the caller having to put the
// binaries on $PATH by hand.
//
// It expects catalyst-activate(.exe) and catalyst-track(.exe) to already
// be built and sitting next to this executable (the layout `go build
// ./cmd/...` or a release archive produces).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/basket/catalyst/internal/orchestrator"
	"github.com/basket/catalyst/internal/platform"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalyst-installer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sourceDir := fs.String("from", "", "directory holding the built hook binaries (default: this executable's directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	info := platform.Detect()
	home, err := platform.HomeDir(info)
	if err != nil {
		fmt.Fprintf(stderr, "catalyst-installer: %v\n", err)
		return 1
	}

	from := *sourceDir
	if from == "" {
		exe, err := os.Executable()
		if err != nil {
			fmt.Fprintf(stderr, "catalyst-installer: resolve own path: %v\n", err)
			return 1
		}
		from = filepath.Dir(exe)
	}

	installDir := orchestrator.BinaryInstallDir(home)
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "catalyst-installer: create %s: %v\n", installDir, err)
		return 1
	}

	mode := os.FileMode(0o644)
	if info.UnixPerms {
		mode = 0o755
	}

	var installed []string
	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		fileName := name + info.BinExt
		srcPath := filepath.Join(from, fileName)
		dstPath := filepath.Join(installDir, fileName)
		if err := installBinary(srcPath, dstPath, mode); err != nil {
			fmt.Fprintf(stderr, "catalyst-installer: install %s: %v\n", name, err)
			return 1
		}
		installed = append(installed, dstPath)
	}

	for _, path := range installed {
		fmt.Fprintf(stdout, "installed %s\n", path)
	}
	return 0
}

func installBinary(srcPath, dstPath string, mode os.FileMode) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}
	return platform.AtomicWrite(dstPath, data, mode, func(msg string) {
		fmt.Fprintf(os.Stderr, "catalyst-installer: %s\n", msg)
	})
}

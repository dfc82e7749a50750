// Command catalyst is the project orchestrator CLI: init/status/update a
// project's .claude/ layout and inspect/edit its settings.json.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=...".
var Version = "dev"

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

COMMANDS:
  init       Lay down .claude/, install skills, wire hooks
  status     Diagnose an existing .claude/ layout
  update     Regenerate wrappers and hash-aware skill updates
  settings   Read/validate/edit settings.json
  help       Show this message

Run '%s <command> -h' for flags specific to a command.

FLAGS:
`, os.Args[0], os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	ctx := setupLogging()

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)
	case "init":
		os.Exit(runInitCommand(args[1:], ctx))
	case "status":
		os.Exit(runStatusCommand(args[1:]))
	case "update":
		os.Exit(runUpdateCommand(args[1:], ctx))
	case "settings":
		os.Exit(runSettingsCommand(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

// projectRootOrDefault resolves the project root for a subcommand,
// defaulting to the current working directory.
func projectRootOrDefault(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return os.Getwd()
}

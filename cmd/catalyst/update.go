package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/basket/catalyst/internal/orchestrator/updatecmd"
	"github.com/basket/catalyst/internal/skills"
)

func runUpdateCommand(args []string, ctx context.Context) int {
	fs := flag.NewFlagSet("catalyst update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	force := fs.Bool("force", false, "update even if already on the current version; overwrite user-modified skill files")
	jsonOutput := fs.Bool("json", false, "print the UpdateReport as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	root, err := projectRootOrDefault(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve project root: %v\n", err)
		return 1
	}

	catalog, err := skills.LoadEmbeddedCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load embedded skill catalog: %v\n", err)
		return 1
	}

	provider := setupTracing(ctx)
	defer provider.Shutdown(ctx)

	report, err := updatecmd.Run(ctx, updatecmd.Config{ProjectRoot: root, Force: *force}, catalog)
	if err != nil {
		slog.Error("update failed", "project_root", root, "error", err)
		fmt.Fprintf(os.Stderr, "catalyst update: %v\n", err)
		return 1
	}
	slog.Info("update complete", "project_root", root, "old_version", report.OldVersion, "new_version", report.NewVersion, "up_to_date", report.UpToDate)

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
		return 0
	}

	if report.UpToDate {
		fmt.Printf("already up to date (%s)\n", report.NewVersion)
		return 0
	}
	fmt.Printf("updated %s -> %s\n", report.OldVersion, report.NewVersion)
	fmt.Printf("  wrappers updated: %v\n", report.WrappersUpdated)
	fmt.Printf("  skills updated:   %v\n", report.SkillsUpdated)
	if len(report.SkillsSkipped) > 0 {
		fmt.Printf("  skills skipped (user-modified, rerun with -force to overwrite): %v\n", report.SkillsSkipped)
	}
	return 0
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/basket/catalyst/internal/orchestrator/initcmd"
	"github.com/basket/catalyst/internal/skills"
	"github.com/basket/catalyst/internal/tui"
)

func runInitCommand(args []string, ctx context.Context) int {
	fs := flag.NewFlagSet("catalyst init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	skillsFlag := fs.String("skills", "", "comma-separated skill ids to install (default: all)")
	all := fs.Bool("all", false, "install every embedded skill (default when -skills is omitted)")
	noHooks := fs.Bool("no-hooks", false, "skip installing the activation hook wrapper")
	noTracker := fs.Bool("no-tracker", false, "skip installing the tracker hook wrapper")
	force := fs.Bool("force", false, "reinstall skill bundles and settings even if already present")
	interactive := fs.Bool("interactive", false, "run the skill/hook selection wizard instead of flags")
	jsonOutput := fs.Bool("json", false, "print the InitReport as JSON")
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

	var selected []string
	if strings.TrimSpace(*skillsFlag) != "" {
		for _, id := range strings.Split(*skillsFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				selected = append(selected, id)
			}
		}
	}

	cfg := initcmd.Config{
		ProjectRoot:    root,
		InstallHooks:   !*noHooks,
		InstallTracker: !*noTracker,
		Skills:         selected,
		All:            *all || len(selected) == 0,
		Force:          *force,
	}

	provider := setupTracing(ctx)
	defer provider.Shutdown(ctx)

	wantWizard := *interactive ||
		(!*all && len(selected) == 0 && !*jsonOutput &&
			isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("CATALYST_NO_TUI") == "")
	if wantWizard {
		result, err := tui.RunWizard(ctx, catalog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "catalyst init: wizard cancelled: %v\n", err)
			return 1
		}
		cfg.Skills = result.Skills
		cfg.All = false
		cfg.InstallHooks = result.InstallHooks
		cfg.InstallTracker = result.InstallTracker
	}

	report, err := initcmd.Run(ctx, cfg, catalog)
	if err != nil {
		slog.Error("init failed", "project_root", root, "error", err)
		fmt.Fprintf(os.Stderr, "catalyst init: %v\n", err)
		return 1
	}
	slog.Info("init complete", "project_root", root, "skills_installed", len(report.InstalledSkills))

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("catalyst init: %d dirs created, %d hooks installed, %d skills installed\n",
		len(report.CreatedDirs), len(report.InstalledHooks), len(report.InstalledSkills))
	if report.SettingsCreated {
		fmt.Println("  settings.json created")
	}
	if report.SkillRulesCreated {
		fmt.Println("  skill-rules.json created")
	}
	fmt.Printf("  version: %s\n", report.VersionWritten)
	return 0
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/basket/catalyst/internal/cli"
	"github.com/basket/catalyst/internal/orchestrator/statuscmd"
	"github.com/basket/catalyst/internal/skills"
)

func runStatusCommand(args []string) int {
	fs := flag.NewFlagSet("catalyst status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	fix := fs.Bool("fix", false, "recreate missing wrappers and re-chmod non-executable ones")
	jsonOutput := fs.Bool("json", false, "print the StatusReport (and FixReport, with -fix) as JSON")
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

	if *fix {
		report, fixReport := statuscmd.Fix(root, catalog)
		if *jsonOutput {
			return printStatusJSON(struct {
				Report statuscmd.Report    `json:"report"`
				Fix    statuscmd.FixReport `json:"fix"`
			}{report, fixReport})
		}
		printStatusReport(report)
		fmt.Println()
		fmt.Printf("fix: %d repaired, %d failed\n", len(fixReport.Fixed), len(fixReport.Failed))
		return exitCodeFor(report)
	}

	report := statuscmd.Run(root, catalog)
	if *jsonOutput {
		return printStatusJSON(report)
	}
	printStatusReport(report)
	return exitCodeFor(report)
}

func printStatusJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		return 1
	}
	return 0
}

func printStatusReport(report statuscmd.Report) {
	colorOn := cli.ColorEnabled()
	fmt.Printf("overall: %s\n", paintOverall(colorOn, report.Overall))
	printChecks(colorOn, "binaries", report.Binaries)
	printChecks(colorOn, "hooks", report.Hooks)
	printChecks(colorOn, "skills", report.Skills)
	if len(report.Issues) > 0 {
		fmt.Println("issues:")
		for _, issue := range report.Issues {
			fmt.Printf("  [%s] %s: %s\n", issue.Status, issue.Code, issue.Message)
		}
	}
}

func printChecks(colorOn bool, label string, checks []statuscmd.CheckResult) {
	if len(checks) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, c := range checks {
		fmt.Printf("  %s %s — %s\n", paintStatus(colorOn, c.Status), c.Name, c.Message)
	}
}

func paintOverall(colorOn bool, overall statuscmd.Overall) string {
	switch overall {
	case statuscmd.Healthy:
		return cli.Paint(colorOn, cli.SeverityOK, string(overall))
	case statuscmd.Warning:
		return cli.Paint(colorOn, cli.SeverityWarn, string(overall))
	default:
		return cli.Paint(colorOn, cli.SeverityFail, string(overall))
	}
}

func paintStatus(colorOn bool, status statuscmd.Status) string {
	switch status {
	case statuscmd.Pass:
		return cli.Paint(colorOn, cli.SeverityOK, string(status))
	case statuscmd.Warn:
		return cli.Paint(colorOn, cli.SeverityWarn, string(status))
	case statuscmd.Fail:
		return cli.Paint(colorOn, cli.SeverityFail, string(status))
	default:
		return string(status)
	}
}

func exitCodeFor(report statuscmd.Report) int {
	if report.Overall == statuscmd.Error {
		return 1
	}
	return 0
}

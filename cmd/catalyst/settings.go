package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/basket/catalyst/internal/orchestrator/settingscmd"
)

func runSettingsCommand(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: catalyst settings <read|validate|add-hook|remove-hook> ...")
		return 2
	}

	sub := args[0]
	rest := args[1:]
	switch sub {
	case "read":
		return runSettingsRead(rest)
	case "validate":
		return runSettingsValidate(rest)
	case "add-hook":
		return runSettingsAddHook(rest)
	case "remove-hook":
		return runSettingsRemoveHook(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown settings subcommand %q\n", sub)
		return 2
	}
}

func runSettingsRead(args []string) int {
	fs := flag.NewFlagSet("catalyst settings read", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	root, err := projectRootOrDefault(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve project root: %v\n", err)
		return 1
	}

	doc, err := settingscmd.Read(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalyst settings read: %v\n", err)
		return 1
	}
	data, err := doc.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal settings: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	fmt.Println()
	return 0
}

func runSettingsValidate(args []string) int {
	fs := flag.NewFlagSet("catalyst settings validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	root, err := projectRootOrDefault(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve project root: %v\n", err)
		return 1
	}

	if err := settingscmd.Validate(root); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		return 1
	}
	fmt.Println("settings.json is valid")
	return 0
}

func runSettingsAddHook(args []string) int {
	fs := flag.NewFlagSet("catalyst settings add-hook", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	event := fs.String("event", "", "event name, e.g. UserPromptSubmit")
	matcher := fs.String("matcher", "", "matcher regex (empty means always)")
	command := fs.String("command", "", "hook command to invoke")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *event == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "usage: catalyst settings add-hook -event <name> -command <cmd> [-matcher <regex>]")
		return 2
	}
	root, err := projectRootOrDefault(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve project root: %v\n", err)
		return 1
	}

	if err := settingscmd.AddHook(root, *event, *matcher, *command); err != nil {
		fmt.Fprintf(os.Stderr, "catalyst settings add-hook: %v\n", err)
		return 1
	}
	fmt.Println("hook added")
	return 0
}

func runSettingsRemoveHook(args []string) int {
	fs := flag.NewFlagSet("catalyst settings remove-hook", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	projectRoot := fs.String("project", "", "project root (default: current directory)")
	event := fs.String("event", "", "event name, e.g. UserPromptSubmit")
	command := fs.String("command", "", "hook command to remove")
	jsonOutput := fs.Bool("json", false, "print the removed count as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *event == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "usage: catalyst settings remove-hook -event <name> -command <cmd>")
		return 2
	}
	root, err := projectRootOrDefault(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve project root: %v\n", err)
		return 1
	}

	removed, err := settingscmd.RemoveHook(root, *event, *command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalyst settings remove-hook: %v\n", err)
		return 1
	}
	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		return boolToExit(enc.Encode(map[string]int{"removed": removed}) == nil)
	}
	fmt.Printf("removed %d hook(s)\n", removed)
	return 0
}

func boolToExit(ok bool) int {
	if ok {
		return 0
	}
	return 1
}

// Package settingscmd implements the ancillary `settings` subcommand:
// read/validate/add-hook/remove-hook/merge operations over a project's
// settings.json, using a load/mutate/save round trip over the typed
// settingsdoc.Document.
package settingscmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/basket/catalyst/internal/orchestrator"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/settingsdoc"
)

// Read loads and parses settings.json, returning an empty document if the
// file does not yet exist.
func Read(projectRoot string) (*settingsdoc.Document, error) {
	data, err := os.ReadFile(orchestrator.SettingsPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return settingsdoc.New(), nil
		}
		return nil, fmt.Errorf("read settings.json: %w", err)
	}
	doc, err := settingsdoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse settings.json: %w", err)
	}
	return doc, nil
}

func save(projectRoot string, doc *settingsdoc.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return platform.AtomicWrite(orchestrator.SettingsPath(projectRoot), data, 0o644, nil)
}

// Validate parses settings.json and checks the core invariants: both core
// events present, and every referenced hook command resolves to a wrapper
// script that actually exists under .claude/hooks.
func Validate(projectRoot string) error {
	doc, err := Read(projectRoot)
	if err != nil {
		return err
	}
	return doc.Validate(func(command string) bool {
		return wrapperFileExists(projectRoot, command)
	})
}

// wrapperFileExists extracts the trailing path component of a
// $CLAUDE_PROJECT_DIR/.claude/hooks/<file> command string and checks it
// against the project's actual hooks directory.
func wrapperFileExists(projectRoot, command string) bool {
	name := filepath.Base(firstField(command))
	if name == "" || name == "." {
		return false
	}
	_, err := os.Stat(filepath.Join(orchestrator.HooksDir(projectRoot), name))
	return err == nil
}

func firstField(s string) string {
	for i, c := range s {
		if c == ' ' || c == '"' {
			return s[:i]
		}
	}
	return s
}

// AddHook appends a hook command under event, grouped under matcher (empty
// matcher means "always"), preserving every other entry untouched.
func AddHook(projectRoot, event, matcher, command string) error {
	doc, err := Read(projectRoot)
	if err != nil {
		return err
	}
	doc.Events[event] = append(doc.Events[event], settingsdoc.MatcherGroup{
		Matcher: matcher,
		Hooks:   []settingsdoc.Hook{{Type: "command", Command: command}},
	})
	return save(projectRoot, doc)
}

// RemoveHook drops every hook under event whose command equals command,
// removing now-empty matcher groups. Reports how many hooks were removed.
func RemoveHook(projectRoot, event, command string) (int, error) {
	doc, err := Read(projectRoot)
	if err != nil {
		return 0, err
	}
	removed := 0
	var kept []settingsdoc.MatcherGroup
	for _, g := range doc.Events[event] {
		var keptHooks []settingsdoc.Hook
		for _, h := range g.Hooks {
			if h.Command == command {
				removed++
				continue
			}
			keptHooks = append(keptHooks, h)
		}
		if len(keptHooks) > 0 {
			g.Hooks = keptHooks
			kept = append(kept, g)
		}
	}
	if removed == 0 {
		return 0, nil
	}
	doc.Events[event] = kept
	return removed, save(projectRoot, doc)
}

// Merge combines the on-disk document with other (typically produced by
// another tool, or read from a second file) using the same owned-group
// replacement rules init/update use, and persists the result.
func Merge(projectRoot string, other *settingsdoc.Document) (*settingsdoc.Document, error) {
	base, err := Read(projectRoot)
	if err != nil {
		return nil, err
	}
	merged := settingsdoc.Merge(base, other)
	if err := save(projectRoot, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

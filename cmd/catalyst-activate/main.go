// Command catalyst-activate is hook A (prompt-submit). It reads one JSON
// event from stdin, scores it against the project's skill-rules.json plus
// recently tracked files, and writes a suggestion reply to stdout.
//
// Exit code is always 0 on the documented paths; any other code
// indicates an internal bug.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/basket/catalyst/internal/activation"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/tracker"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	data, err := io.ReadAll(stdin)
	if err != nil {
		logger.Warn("read stdin", "error", err)
		return 0
	}

	event, err := activation.ParseEvent(data)
	if err != nil {
		fmt.Fprintf(stderr, "catalyst-activate: malformed event: %v\n", err)
		return 0
	}
	if event.Type != activation.EventPromptSubmit || event.Prompt == "" {
		return 0
	}

	rulesPath := filepath.Join(event.CWD, ".claude", "skills", "skill-rules.json")
	doc, err := activation.LoadRulesDocument(rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		fmt.Fprintf(stderr, "catalyst-activate: %v\n", err)
		return 0
	}

	recentPaths := recentTrackedPaths(event.SessionID)

	scored := activation.Score(doc, event.Prompt, recentPaths)
	if err := activation.Emit(stdout, scored); err != nil {
		logger.Warn("emit reply", "error", err)
	}
	return 0
}

// recentTrackedPaths best-effort reads the compiled-in tracker backend for
// this prompt's session; a missing or unreadable tracker store is skipped
// silently (no tracker call is load-bearing).
func recentTrackedPaths(sessionID string) []string {
	if sessionID == "" {
		return nil
	}
	info := platform.Detect()
	home, err := platform.HomeDir(info)
	if err != nil {
		return nil
	}

	store, err := tracker.OpenDefaultStore(filepath.Join(home, ".claude-hooks"))
	if err != nil {
		return nil
	}
	defer store.Close()

	paths, err := store.RecentPaths(context.Background(), sessionID, activation.RecentWindow())
	if err != nil {
		return nil
	}
	return paths
}

// Command catalyst-track is hook B (post-tool-use). It reads one JSON
// event from stdin, classifies every source file the tool touched, and
// appends one record per file to the session's tracker store.
//
// Exit code is always 0 on the documented paths; any other code
// indicates an internal bug. No tracker failure may block the host tool
// call that triggered the hook.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/basket/catalyst/internal/activation"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/tracker"
)

func main() {
	os.Exit(run(os.Stdin, os.Stderr))
}

func run(stdin io.Reader, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	data, err := io.ReadAll(stdin)
	if err != nil {
		logger.Warn("read stdin", "error", err)
		return 0
	}

	event, err := activation.ParseEvent(data)
	if err != nil {
		fmt.Fprintf(stderr, "catalyst-track: malformed event: %v\n", err)
		return 0
	}
	if event.Type != activation.EventPostToolUse || event.SessionID == "" || len(event.Paths) == 0 {
		return 0
	}

	store, err := openStore()
	if err != nil {
		logger.Warn("open tracker store", "error", err)
		return 0
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	recorded, errs := tracker.RecordAll(ctx, store, event.SessionID, event.ToolName, event.Paths, time.Now().UTC())
	for _, e := range errs {
		logger.Warn("record file change", "error", e)
	}
	logger.Debug("tracked files", "recorded", recorded, "tool", event.ToolName)
	return 0
}

// openStore opens the compiled-in tracker backend (filelog by default,
// sqlite under the catalyst_sqlite build tag) rooted at the platform's
// per-user state directory.
func openStore() (tracker.Store, error) {
	info := platform.Detect()
	home, err := platform.HomeDir(info)
	if err != nil {
		return nil, err
	}
	return tracker.OpenDefaultStore(filepath.Join(home, ".claude-hooks"))
}

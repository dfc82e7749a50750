// Package skills owns the embedded default skill bundle catalog, its
// on-disk materialization, and a watcher over skill-bundle and rules files.
// No catalyst subcommand starts the watcher.
package skills

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher emits a debounced reload signal whenever skill-rules.json or any
// installed skill bundle file changes under one of its watched roots.
type Watcher struct {
	dirs   []string
	logger *slog.Logger
	events chan string
}

// NewWatcher builds a Watcher over dirs (typically ".claude/skills"); blank
// entries are dropped.
func NewWatcher(dirs []string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	cp := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		cp = append(cp, d)
	}
	return &Watcher{
		dirs:   cp,
		logger: logger,
		events: make(chan string, 16),
	}
}

// Events yields "rules" or "skills" reload hints; the channel closes when
// Start's context is done.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Start begins watching in the background. It returns once the initial
// root directories are registered; events stream asynchronously until ctx
// is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}

	addDir := func(dir string) {
		if strings.TrimSpace(dir) == "" {
			return
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			w.logger.Warn("skills watcher: abs failed", "dir", dir, "error", err)
			return
		}
		if err := fsw.Add(abs); err != nil {
			if os.IsNotExist(err) {
				return
			}
			w.logger.Warn("skills watcher: add failed", "dir", abs, "error", err)
			return
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			return
		}
		for _, ent := range entries {
			if !ent.IsDir() {
				continue
			}
			child := filepath.Join(abs, ent.Name())
			_ = fsw.Add(child)
			resourcesDir := filepath.Join(child, "resources")
			if fi, err := os.Stat(resourcesDir); err == nil && fi.IsDir() {
				_ = fsw.Add(resourcesDir)
			}
		}
	}

	for _, dir := range w.dirs {
		addDir(dir)
	}

	go func() {
		defer func() {
			_ = fsw.Close()
			close(w.events)
		}()

		// Debounce bursts of events (e.g. an editor's save-as-rename-swap).
		var pending string
		var timer *time.Timer
		var timerC <-chan time.Time
		flush := func() {
			if pending == "" {
				return
			}
			kind := pending
			pending = ""
			select {
			case w.events <- kind:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				if ev.Op&fsnotify.Create != 0 {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						_ = fsw.Add(ev.Name)
					}
				}

				base := filepath.Base(ev.Name)
				sep := string(filepath.Separator)
				kind := ""
				switch {
				case base == "skill-rules.json":
					kind = "rules"
				case base == "SKILL.md", strings.Contains(ev.Name, sep+"resources"+sep):
					kind = "skills"
				}
				if kind == "" {
					continue
				}

				if pending == "" {
					pending = kind
				} else if pending != kind {
					pending = "skills"
				}
				if timer == nil {
					timer = time.NewTimer(150 * time.Millisecond)
					timerC = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(150 * time.Millisecond)
					timerC = timer.C
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("skills watcher error", "error", err)
			case <-timerC:
				flush()
				timerC = nil
			}
		}
	}()

	return nil
}

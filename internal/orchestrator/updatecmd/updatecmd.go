// Package updatecmd implements the `update` operation: version check,
// unconditional wrapper regeneration, hash-aware skill bundle update, and
// rules-document field merge.
package updatecmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	goetel "go.opentelemetry.io/otel"

	"github.com/basket/catalyst/internal/hashledger"
	"github.com/basket/catalyst/internal/orchestrator"
	catotel "github.com/basket/catalyst/internal/otel"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/rules"
	"github.com/basket/catalyst/internal/shared"
	"github.com/basket/catalyst/internal/skills"
)

// Config is the UpdateConfig input.
type Config struct {
	ProjectRoot string
	Force       bool
}

// Report is the UpdateReport output.
type Report struct {
	OldVersion      string   `json:"old_version"`
	NewVersion      string   `json:"new_version"`
	WrappersUpdated []string `json:"wrappers_updated"`
	SkillsUpdated   []string `json:"skills_updated"`
	SkillsSkipped   []string `json:"skills_skipped"`
	UpToDate        bool     `json:"up_to_date"`
}

// NotInitialized reports that .catalyst-version is absent: the project
// was never run through init.
type NotInitialized struct {
	ProjectRoot string
}

func (e *NotInitialized) Error() string {
	return fmt.Sprintf("%s is not initialized: run `catalyst init` first", e.ProjectRoot)
}

// RulesDocumentInvalid reports that the existing skill-rules.json failed
// to parse and --force was not given.
type RulesDocumentInvalid struct {
	Path string
	Err  error
}

func (e *RulesDocumentInvalid) Error() string {
	return fmt.Sprintf("%s failed to parse (rerun with --force to regenerate): %v", e.Path, e.Err)
}

func (e *RulesDocumentInvalid) Unwrap() error { return e.Err }

// Run executes the full update sequence and returns the resulting report.
func Run(ctx context.Context, cfg Config, catalog *skills.EmbeddedCatalog) (Report, error) {
	_, span := catotel.StartSpan(ctx, goetel.Tracer(catotel.TracerName), "catalyst.update",
		catotel.AttrProjectRoot.String(cfg.ProjectRoot),
		catotel.AttrForced.Bool(cfg.Force),
		catotel.AttrTraceID.String(shared.TraceID(ctx)),
	)
	defer span.End()

	metrics, err := catotel.NewMetrics(goetel.Meter(catotel.MeterName))
	if err != nil {
		return Report{}, fmt.Errorf("create metrics instruments: %w", err)
	}

	report := Report{NewVersion: orchestrator.Version}

	versionPath := orchestrator.VersionPath(cfg.ProjectRoot)
	oldVersionData, err := os.ReadFile(versionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return report, &NotInitialized{ProjectRoot: cfg.ProjectRoot}
		}
		return report, fmt.Errorf("read .catalyst-version: %w", err)
	}
	report.OldVersion = string(oldVersionData)

	if report.OldVersion == orchestrator.Version && !cfg.Force {
		report.NewVersion = report.OldVersion
		report.UpToDate = true
		return report, nil
	}

	lock, err := platform.AcquireLock(orchestrator.LockPath(cfg.ProjectRoot), "update")
	if err != nil {
		return report, err
	}
	defer lock.Release()

	info := platform.Detect()
	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		if err := writeWrapper(cfg.ProjectRoot, info, name); err != nil {
			return report, err
		}
		report.WrappersUpdated = append(report.WrappersUpdated, name)
		metrics.WrappersWritten.Add(ctx, 1)
	}

	ledger, err := hashledger.LoadFile(orchestrator.HashesPath(cfg.ProjectRoot))
	if err != nil {
		return report, err
	}

	installedIDs, err := installedSkillIDs(cfg.ProjectRoot)
	if err != nil {
		return report, err
	}
	for _, id := range installedIDs {
		bundle, ok := catalog.Lookup(id)
		if !ok {
			// A skill directory with no catalog entry is left untouched;
			// it isn't one of ours to manage.
			continue
		}
		_, skillSpan := catotel.StartSpan(ctx, goetel.Tracer(catotel.TracerName), "catalyst.update.update_skill",
			catotel.AttrSkillID.String(id),
		)
		result, err := skills.Update(orchestrator.SkillsDir(cfg.ProjectRoot), bundle, ledger, cfg.Force)
		skillSpan.End()
		if err != nil {
			return report, fmt.Errorf("update skill %q: %w", id, err)
		}
		if result.Updated {
			report.SkillsUpdated = append(report.SkillsUpdated, id)
			metrics.SkillsUpdated.Add(ctx, 1)
		}
		if result.Skipped {
			report.SkillsSkipped = append(report.SkillsSkipped, id)
			metrics.SkillsSkipped.Add(ctx, 1)
		}
	}

	if err := updateRulesDocument(cfg, installedIDs); err != nil {
		return report, err
	}

	hashData, err := ledger.Marshal()
	if err != nil {
		return report, err
	}
	if err := platform.AtomicWrite(orchestrator.HashesPath(cfg.ProjectRoot), hashData, 0o644, nil); err != nil {
		return report, err
	}
	if err := platform.AtomicWrite(versionPath, []byte(orchestrator.Version), 0o644, nil); err != nil {
		return report, err
	}

	return report, nil
}

func writeWrapper(projectRoot string, info platform.Info, binaryName string) error {
	script := orchestrator.WrapperScript(info, binaryName)
	path := filepath.Join(orchestrator.HooksDir(projectRoot), orchestrator.WrapperFileName(info, binaryName))
	mode := os.FileMode(0o644)
	if info.UnixPerms {
		mode = 0o755
	}
	return platform.AtomicWrite(path, []byte(script), mode, nil)
}

func installedSkillIDs(projectRoot string) ([]string, error) {
	entries, err := os.ReadDir(orchestrator.SkillsDir(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read skills dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// updateRulesDocument regenerates the orchestrator-owned fields of each
// installed skill's rule while preserving user-editable fields.
func updateRulesDocument(cfg Config, installedIDs []string) error {
	path := orchestrator.RulesPath(cfg.ProjectRoot)
	data, err := os.ReadFile(path)

	existing := &rules.Document{Version: "1", Rules: map[string]rules.SkillRule{}}
	if err == nil {
		parsed, parseErr := rules.Parse(data)
		if parseErr != nil {
			if !cfg.Force {
				return &RulesDocumentInvalid{Path: path, Err: parseErr}
			}
		} else {
			existing = parsed
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read skill-rules.json: %w", err)
	}

	merged := &rules.Document{Version: "1", Rules: map[string]rules.SkillRule{}}
	for _, id := range installedIDs {
		fresh, ok := orchestrator.DefaultRule(id)
		if !ok {
			fresh = orchestrator.FallbackRule(id)
		}
		if old, ok := existing.Rules[id]; ok {
			merged.Rules[id] = orchestrator.MergeRuleUpdate(old, fresh)
		} else {
			merged.Rules[id] = fresh
		}
	}

	if err := merged.Validate(); err != nil {
		return fmt.Errorf("regenerated rules document invalid: %w", err)
	}
	out, err := merged.Marshal()
	if err != nil {
		return err
	}
	return platform.AtomicWrite(path, out, 0o644, nil)
}

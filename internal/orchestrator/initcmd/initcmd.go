// Package initcmd implements the `init` operation: lay down .claude/,
// install selected embedded skill bundles, generate skill-rules.json,
// wrapper scripts, and settings.json, and write the hash ledger and
// version file.
package initcmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	goetel "go.opentelemetry.io/otel"

	"github.com/basket/catalyst/internal/hashledger"
	"github.com/basket/catalyst/internal/orchestrator"
	catotel "github.com/basket/catalyst/internal/otel"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/rules"
	"github.com/basket/catalyst/internal/settingsdoc"
	"github.com/basket/catalyst/internal/shared"
	"github.com/basket/catalyst/internal/skills"
)

// Config is the InitConfig input.
type Config struct {
	ProjectRoot    string
	InstallHooks   bool
	InstallTracker bool
	Skills         []string // skill ids from the embedded catalog; empty+All means every id
	All            bool
	Force          bool
}

// Report is the InitReport output.
type Report struct {
	CreatedDirs       []string `json:"created_dirs"`
	InstalledHooks    []string `json:"installed_hooks"`
	InstalledSkills   []string `json:"installed_skills"`
	SettingsCreated   bool     `json:"settings_created"`
	SkillRulesCreated bool     `json:"skill_rules_created"`
	VersionWritten    string   `json:"version_written"`
}

// BinariesNotInstalled reports that a selected hook's binary is absent
// both from the canonical install path and from $PATH.
type BinariesNotInstalled struct {
	Missing     []string
	InstallPath string
}

func (e *BinariesNotInstalled) Error() string {
	return fmt.Sprintf("hook binaries not installed: %v (install them to %s, or run the catalyst-installer)", e.Missing, e.InstallPath)
}

// Run executes the full init sequence and returns the resulting report. The
// init phase is wrapped in a span (a no-op unless OTel was enabled by the
// caller via catotel.Init), with one child span per installed skill.
func Run(ctx context.Context, cfg Config, catalog *skills.EmbeddedCatalog) (Report, error) {
	ctx, span := catotel.StartSpan(ctx, goetel.Tracer(catotel.TracerName), "catalyst.init",
		catotel.AttrProjectRoot.String(cfg.ProjectRoot),
		catotel.AttrForced.Bool(cfg.Force),
		catotel.AttrTraceID.String(shared.TraceID(ctx)),
	)
	defer span.End()

	metrics, err := catotel.NewMetrics(goetel.Meter(catotel.MeterName))
	if err != nil {
		return Report{}, fmt.Errorf("create metrics instruments: %w", err)
	}

	report := Report{}

	info := platform.Detect()
	home, err := platform.HomeDir(info)
	if err != nil {
		return report, err
	}
	installDir := orchestrator.BinaryInstallDir(home)

	selected, err := resolveSelectedSkills(cfg, catalog)
	if err != nil {
		return report, err
	}

	if missing := checkBinaries(cfg, info, installDir); len(missing) > 0 {
		return report, &BinariesNotInstalled{Missing: missing, InstallPath: installDir}
	}

	lock, err := platform.AcquireLock(orchestrator.LockPath(cfg.ProjectRoot), "init")
	if err != nil {
		return report, err
	}
	defer lock.Release()

	if err := ensureDirs(cfg.ProjectRoot, &report); err != nil {
		return report, err
	}

	ledger, err := hashledger.LoadFile(orchestrator.HashesPath(cfg.ProjectRoot))
	if err != nil {
		return report, err
	}

	for _, id := range selected {
		_, skillSpan := catotel.StartSpan(ctx, goetel.Tracer(catotel.TracerName), "catalyst.init.install_skill",
			catotel.AttrSkillID.String(id),
		)
		bundle, ok := catalog.Lookup(id)
		if !ok {
			skillSpan.End()
			return report, fmt.Errorf("unknown skill id %q", id)
		}
		if cfg.Force {
			ledger.DeleteSkill(id)
		}
		installed, err := skills.Install(orchestrator.SkillsDir(cfg.ProjectRoot), bundle, ledger, cfg.Force)
		skillSpan.End()
		if err != nil {
			return report, fmt.Errorf("install skill %q: %w", id, err)
		}
		if installed {
			report.InstalledSkills = append(report.InstalledSkills, id)
			metrics.SkillsInstalled.Add(ctx, 1)
		}
	}

	if err := writeRulesDocument(cfg.ProjectRoot, selected, &report); err != nil {
		return report, err
	}

	if cfg.InstallHooks {
		if err := writeWrapper(cfg.ProjectRoot, info, orchestrator.ActivateBinary); err != nil {
			return report, err
		}
		report.InstalledHooks = append(report.InstalledHooks, orchestrator.ActivateBinary)
		metrics.WrappersWritten.Add(ctx, 1)
	}
	if cfg.InstallTracker {
		if err := writeWrapper(cfg.ProjectRoot, info, orchestrator.TrackBinary); err != nil {
			return report, err
		}
		report.InstalledHooks = append(report.InstalledHooks, orchestrator.TrackBinary)
		metrics.WrappersWritten.Add(ctx, 1)
	}

	if err := writeSettings(cfg, info, &report); err != nil {
		return report, err
	}

	hashData, err := ledger.Marshal()
	if err != nil {
		return report, err
	}
	if err := platform.AtomicWrite(orchestrator.HashesPath(cfg.ProjectRoot), hashData, 0o644, nil); err != nil {
		return report, err
	}

	if err := platform.AtomicWrite(orchestrator.VersionPath(cfg.ProjectRoot), []byte(orchestrator.Version), 0o644, nil); err != nil {
		return report, err
	}
	report.VersionWritten = orchestrator.Version

	return report, nil
}

func resolveSelectedSkills(cfg Config, catalog *skills.EmbeddedCatalog) ([]string, error) {
	if cfg.All || len(cfg.Skills) == 0 {
		return catalog.IDs(), nil
	}
	for _, id := range cfg.Skills {
		if !platform.ValidSkillID(id) {
			return nil, fmt.Errorf("invalid skill id %q", id)
		}
		if _, ok := catalog.Lookup(id); !ok {
			return nil, fmt.Errorf("unknown skill id %q", id)
		}
	}
	return cfg.Skills, nil
}

func checkBinaries(cfg Config, info platform.Info, installDir string) []string {
	var names []string
	if cfg.InstallHooks {
		names = append(names, orchestrator.ActivateBinary)
	}
	if cfg.InstallTracker {
		names = append(names, orchestrator.TrackBinary)
	}
	var missing []string
	for _, name := range names {
		if binaryAvailable(info, installDir, name) {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

func binaryAvailable(info platform.Info, installDir, name string) bool {
	candidate := filepath.Join(installDir, name+info.BinExt)
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return true
	}
	if _, err := exec.LookPath(name); err == nil {
		return true
	}
	return false
}

func ensureDirs(projectRoot string, report *Report) error {
	dirs := []string{
		orchestrator.ClaudeDir(projectRoot),
		orchestrator.HooksDir(projectRoot),
		orchestrator.SkillsDir(projectRoot),
		orchestrator.AgentsDir(projectRoot),
		orchestrator.CommandsDir(projectRoot),
	}
	for _, d := range dirs {
		existed := true
		if _, err := os.Stat(d); os.IsNotExist(err) {
			existed = false
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", d, err)
		}
		if !existed {
			report.CreatedDirs = append(report.CreatedDirs, d)
		}
	}
	return nil
}

func writeRulesDocument(projectRoot string, selected []string, report *Report) error {
	doc := &rules.Document{Version: "1", Rules: map[string]rules.SkillRule{}}
	for _, id := range selected {
		rule, ok := orchestrator.DefaultRule(id)
		if !ok {
			rule = orchestrator.FallbackRule(id)
		}
		doc.Rules[id] = rule
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("generated rules document invalid: %w", err)
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := platform.AtomicWrite(orchestrator.RulesPath(projectRoot), data, 0o644, nil); err != nil {
		return err
	}
	report.SkillRulesCreated = true
	return nil
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

func writeSettings(cfg Config, info platform.Info, report *Report) error {
	path := orchestrator.SettingsPath(cfg.ProjectRoot)
	base := settingsdoc.New()
	if data, err := os.ReadFile(path); err == nil {
		parsed, parseErr := settingsdoc.Parse(data)
		if parseErr != nil {
			return fmt.Errorf("parse existing settings.json: %w", parseErr)
		}
		base = parsed
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read settings.json: %w", err)
	} else {
		report.SettingsCreated = true
	}

	ours := settingsdoc.New()
	ours.EnsureCoreEvents(
		orchestrator.WrapperCommand(info, orchestrator.ActivateBinary),
		orchestrator.WrapperCommand(info, orchestrator.TrackBinary),
	)
	merged := settingsdoc.Merge(base, ours)

	data, err := merged.Marshal()
	if err != nil {
		return err
	}
	return platform.AtomicWrite(path, data, 0o644, nil)
}

// Package statuscmd implements the `status`/`status --fix` operation:
// read-only diagnosis of a project's .claude/ layout with optional
// auto-repair of wrapper scripts.
package statuscmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/basket/catalyst/internal/orchestrator"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/rules"
	"github.com/basket/catalyst/internal/settingsdoc"
	"github.com/basket/catalyst/internal/skills"
)

// Status is the PASS/FAIL/WARN/SKIP taxonomy used for every
// per-binary/per-hook/per-skill substatus.
type Status string

const (
	Pass Status = "PASS"
	Fail Status = "FAIL"
	Warn Status = "WARN"
	Skip Status = "SKIP"
)

// Overall summarizes a Report: any Fail-severity issue makes it Error, any
// remaining Warn makes it Warning, else Healthy.
type Overall string

const (
	Healthy Overall = "Healthy"
	Warning Overall = "Warning"
	Error   Overall = "Error"
)

// CheckResult is one named diagnostic outcome.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Issue is a CheckResult promoted into the report's flat issue list,
// carrying enough identity for --fix to act on it.
type Issue struct {
	Code    string `json:"code"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Report is the StatusReport output.
type Report struct {
	Overall  Overall       `json:"overall"`
	Binaries []CheckResult `json:"binaries"`
	Hooks    []CheckResult `json:"hooks"`
	Skills   []CheckResult `json:"skills"`
	Issues   []Issue       `json:"issues"`
}

func (r *Report) add(code string, cr CheckResult, bucket *[]CheckResult) {
	*bucket = append(*bucket, cr)
	if cr.Status == Fail || cr.Status == Warn {
		r.Issues = append(r.Issues, Issue{Code: code, Status: cr.Status, Message: cr.Message})
	}
}

func (r *Report) computeOverall() {
	r.Overall = Healthy
	for _, issue := range r.Issues {
		if issue.Status == Fail {
			r.Overall = Error
			return
		}
	}
	if len(r.Issues) > 0 {
		r.Overall = Warning
	}
}

// Run performs every read-only check and returns the resulting Report.
func Run(projectRoot string, catalog *skills.EmbeddedCatalog) Report {
	report := Report{}
	info := platform.Detect()
	home, homeErr := platform.HomeDir(info)

	var installDir string
	if homeErr == nil {
		installDir = orchestrator.BinaryInstallDir(home)
	}

	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		report.add("binary:"+name, checkBinary(info, installDir, name), &report.Binaries)
	}

	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		report.add("wrapper:"+name, checkWrapper(projectRoot, info, name), &report.Hooks)
	}
	settingsResult, _ := checkSettings(projectRoot)
	report.add("settings", settingsResult, &report.Hooks)

	rulesResult, rulesDoc := checkRules(projectRoot, catalog)
	report.add("skill-rules", rulesResult, &report.Skills)

	for _, id := range installedSkillIDs(projectRoot, rulesDoc) {
		report.add("skill:"+id, checkSkillMD(projectRoot, id), &report.Skills)
	}

	report.add("tracker-backend", checkTrackerBackend(), &report.Hooks)

	report.computeOverall()
	return report
}

// FixReport summarizes what `status --fix` repaired.
type FixReport struct {
	Fixed  []string `json:"fixed"`
	Failed []string `json:"failed"`
}

// Fix re-runs Run and repairs every wrapper-related issue it finds:
// missing wrappers are rewritten from the template, present-but-not-
// executable wrappers are rechmoded. It never touches binaries, settings,
// or skill content — those require `init`/`update`, not `status --fix`.
func Fix(projectRoot string, catalog *skills.EmbeddedCatalog) (Report, FixReport) {
	report := Run(projectRoot, catalog)
	fix := FixReport{}
	info := platform.Detect()

	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		cr := findCheck(report.Hooks, "wrapper:"+name)
		if cr == nil || cr.Status == Pass {
			continue
		}
		if err := repairWrapper(projectRoot, info, name); err != nil {
			fix.Failed = append(fix.Failed, "wrapper:"+name)
			continue
		}
		fix.Fixed = append(fix.Fixed, "wrapper:"+name)
	}

	if len(fix.Fixed) > 0 {
		report = Run(projectRoot, catalog)
	}
	return report, fix
}

func findCheck(bucket []CheckResult, name string) *CheckResult {
	for i := range bucket {
		if bucket[i].Name == name {
			return &bucket[i]
		}
	}
	return nil
}

// repairWrapper rewrites the wrapper script unconditionally and, on Unix,
// ensures it is executable — covers both the missing and the
// present-but-not-executable cases with one code path.
func repairWrapper(projectRoot string, info platform.Info, binaryName string) error {
	script := orchestrator.WrapperScript(info, binaryName)
	path := filepath.Join(orchestrator.HooksDir(projectRoot), orchestrator.WrapperFileName(info, binaryName))
	mode := os.FileMode(0o644)
	if info.UnixPerms {
		mode = 0o755
	}
	return platform.AtomicWrite(path, []byte(script), mode, nil)
}

func checkBinary(info platform.Info, installDir, name string) CheckResult {
	if installDir != "" {
		candidate := filepath.Join(installDir, name+info.BinExt)
		if st, err := os.Stat(candidate); err == nil {
			if info.UnixPerms && st.Mode()&0o111 == 0 {
				return CheckResult{Name: name, Status: Warn, Message: fmt.Sprintf("%s is present but not executable", candidate)}
			}
			return CheckResult{Name: name, Status: Pass, Message: fmt.Sprintf("found at %s", candidate)}
		}
	}
	if _, err := exec.LookPath(name); err == nil {
		return CheckResult{Name: name, Status: Pass, Message: "found on $PATH"}
	}
	return CheckResult{Name: name, Status: Fail, Message: fmt.Sprintf("binary %q not found in install dir or $PATH", name)}
}

func checkWrapper(projectRoot string, info platform.Info, binaryName string) CheckResult {
	path := filepath.Join(orchestrator.HooksDir(projectRoot), orchestrator.WrapperFileName(info, binaryName))
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: "wrapper:" + binaryName, Status: Fail, Message: fmt.Sprintf("wrapper %s is missing", path)}
		}
		return CheckResult{Name: "wrapper:" + binaryName, Status: Fail, Message: fmt.Sprintf("stat %s: %v", path, err)}
	}
	if info.UnixPerms && st.Mode()&0o111 == 0 {
		return CheckResult{Name: "wrapper:" + binaryName, Status: Warn, Message: fmt.Sprintf("wrapper %s is not executable", path)}
	}
	return CheckResult{Name: "wrapper:" + binaryName, Status: Pass, Message: fmt.Sprintf("%s present", path)}
}

func checkSettings(projectRoot string) (CheckResult, *settingsdoc.Document) {
	path := orchestrator.SettingsPath(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: "settings.json", Status: Fail, Message: "settings.json is missing"}, nil
		}
		return CheckResult{Name: "settings.json", Status: Fail, Message: fmt.Sprintf("read settings.json: %v", err)}, nil
	}
	doc, err := settingsdoc.Parse(data)
	if err != nil {
		return CheckResult{Name: "settings.json", Status: Fail, Message: "settings.json failed to parse", Detail: err.Error()}, nil
	}

	wrapperExists := func(command string) bool {
		return settingsdoc.OwnedCommandPattern.MatchString(command)
	}
	if err := doc.Validate(wrapperExists); err != nil {
		return CheckResult{Name: "settings.json", Status: Fail, Message: "settings.json is invalid", Detail: err.Error()}, doc
	}
	return CheckResult{Name: "settings.json", Status: Pass, Message: "parses and references known wrappers"}, doc
}

func checkRules(projectRoot string, catalog *skills.EmbeddedCatalog) (CheckResult, *rules.Document) {
	path := orchestrator.RulesPath(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: "skill-rules.json", Status: Fail, Message: "skill-rules.json is missing"}, nil
		}
		return CheckResult{Name: "skill-rules.json", Status: Fail, Message: fmt.Sprintf("read skill-rules.json: %v", err)}, nil
	}
	doc, err := rules.Parse(data)
	if err != nil {
		return CheckResult{Name: "skill-rules.json", Status: Fail, Message: "skill-rules.json failed to parse", Detail: err.Error()}, nil
	}
	if catalog != nil {
		for id := range doc.Rules {
			if _, ok := catalog.Lookup(id); !ok {
				return CheckResult{Name: "skill-rules.json", Status: Fail, Message: fmt.Sprintf("references unknown installed skill %q", id)}, doc
			}
		}
	}
	return CheckResult{Name: "skill-rules.json", Status: Pass, Message: "parses and references only installed skills"}, doc
}

func installedSkillIDs(projectRoot string, rulesDoc *rules.Document) []string {
	if rulesDoc != nil {
		ids := make([]string, 0, len(rulesDoc.Rules))
		for id := range rulesDoc.Rules {
			ids = append(ids, id)
		}
		return ids
	}
	entries, err := os.ReadDir(orchestrator.SkillsDir(projectRoot))
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids
}

func checkSkillMD(projectRoot, skillID string) CheckResult {
	path := filepath.Join(orchestrator.SkillsDir(projectRoot), skillID, "SKILL.md")
	if _, err := os.Stat(path); err != nil {
		return CheckResult{Name: "skill:" + skillID, Status: Fail, Message: fmt.Sprintf("%s missing SKILL.md", skillID)}
	}
	return CheckResult{Name: "skill:" + skillID, Status: Pass, Message: "SKILL.md present"}
}

// checkTrackerBackend detects which tracker variant produced the session
// logs under <home>/.claude-hooks. Since hook binaries carry no --version
// flag of their own, the stored-state fallback (file extension of
// whatever exists under the tracker state dir) is the only signal
// available.
func checkTrackerBackend() CheckResult {
	info := platform.Detect()
	home, err := platform.HomeDir(info)
	if err != nil {
		return CheckResult{Name: "tracker-backend", Status: Skip, Message: "could not resolve home directory"}
	}
	stateDir := filepath.Join(home, ".claude-hooks")
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return CheckResult{Name: "tracker-backend", Status: Skip, Message: "no tracker state yet"}
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".db" {
			return CheckResult{Name: "tracker-backend", Status: Pass, Message: "sqlite (indexed) backend in use"}
		}
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" {
			return CheckResult{Name: "tracker-backend", Status: Pass, Message: "filelog backend in use"}
		}
	}
	return CheckResult{Name: "tracker-backend", Status: Skip, Message: "tracker backend not yet determinable (Unknown, per design)"}
}

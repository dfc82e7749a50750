package updatecmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/catalyst/internal/orchestrator"
	"github.com/basket/catalyst/internal/orchestrator/initcmd"
	"github.com/basket/catalyst/internal/platform"
	"github.com/basket/catalyst/internal/rules"
	"github.com/basket/catalyst/internal/skills"
)

func testCatalog(t *testing.T) *skills.EmbeddedCatalog {
	t.Helper()
	cat, err := skills.LoadEmbeddedCatalog()
	if err != nil {
		t.Fatalf("LoadEmbeddedCatalog: %v", err)
	}
	return cat
}

func stubBinaries(t *testing.T, installDir string) {
	t.Helper()
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatalf("mkdir install dir: %v", err)
	}
	for _, name := range []string{orchestrator.ActivateBinary, orchestrator.TrackBinary} {
		p := filepath.Join(installDir, name)
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("write stub binary: %v", err)
		}
	}
}

func initializedProject(t *testing.T) (string, *skills.EmbeddedCatalog) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	stubBinaries(t, orchestrator.BinaryInstallDir(home))

	projectRoot := t.TempDir()
	catalog := testCatalog(t)
	cfg := initcmd.Config{ProjectRoot: projectRoot, InstallHooks: true, InstallTracker: true, All: true}
	if _, err := initcmd.Run(context.Background(), cfg, catalog); err != nil {
		t.Fatalf("initcmd.Run: %v", err)
	}
	return projectRoot, catalog
}

func TestRunFailsWithoutInit(t *testing.T) {
	projectRoot := t.TempDir()
	catalog := testCatalog(t)
	_, err := Run(context.Background(), Config{ProjectRoot: projectRoot}, catalog)
	if err == nil {
		t.Fatal("expected NotInitialized error")
	}
	if _, ok := err.(*NotInitialized); !ok {
		t.Fatalf("expected *NotInitialized, got %T: %v", err, err)
	}
}

func TestRunReportsUpToDate(t *testing.T) {
	projectRoot, catalog := initializedProject(t)
	report, err := Run(context.Background(), Config{ProjectRoot: projectRoot}, catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.UpToDate {
		t.Fatalf("expected UpToDate after init, got %+v", report)
	}
	if len(report.WrappersUpdated) != 0 || len(report.SkillsUpdated) != 0 {
		t.Fatalf("up-to-date run should not touch wrappers/skills: %+v", report)
	}
}

func TestRunForceRewritesWrappersAndSkills(t *testing.T) {
	projectRoot, catalog := initializedProject(t)

	report, err := Run(context.Background(), Config{ProjectRoot: projectRoot, Force: true}, catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.UpToDate {
		t.Fatal("forced run must not short-circuit as up to date")
	}
	if len(report.WrappersUpdated) != 2 {
		t.Fatalf("WrappersUpdated = %v, want both hooks", report.WrappersUpdated)
	}
	if len(report.SkillsUpdated) != len(catalog.IDs()) {
		t.Fatalf("SkillsUpdated = %v, want all of %v", report.SkillsUpdated, catalog.IDs())
	}
	if len(report.SkillsSkipped) != 0 {
		t.Fatalf("expected no skipped skills on an untouched install: %v", report.SkillsSkipped)
	}
}

func TestRunSkipsUserEditedSkillFileWithoutForce(t *testing.T) {
	projectRoot, catalog := initializedProject(t)
	ids := catalog.IDs()
	if len(ids) == 0 {
		t.Fatal("catalog has no skills")
	}
	skillMD := filepath.Join(orchestrator.SkillsDir(projectRoot), ids[0], "SKILL.md")
	if err := os.WriteFile(skillMD, []byte("user edited content"), 0o644); err != nil {
		t.Fatalf("write user edit: %v", err)
	}

	// Bump the stored version so the run doesn't short-circuit as
	// up-to-date before it ever looks at skill files.
	if err := os.WriteFile(orchestrator.VersionPath(projectRoot), []byte("0.0.0"), 0o644); err != nil {
		t.Fatalf("write stale version: %v", err)
	}

	report, err := Run(context.Background(), Config{ProjectRoot: projectRoot}, catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, id := range report.SkillsSkipped {
		if id == ids[0] {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q in SkillsSkipped, got %+v", ids[0], report.SkillsSkipped)
	}
	data, err := os.ReadFile(skillMD)
	if err != nil {
		t.Fatalf("read skill md: %v", err)
	}
	if string(data) != "user edited content" {
		t.Fatalf("user edit was overwritten without --force: %q", data)
	}

	// A forced rerun overwrites the edit anyway.
	report2, err := Run(context.Background(), Config{ProjectRoot: projectRoot, Force: true}, catalog)
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	foundUpdated := false
	for _, id := range report2.SkillsUpdated {
		if id == ids[0] {
			foundUpdated = true
		}
	}
	if !foundUpdated {
		t.Fatalf("expected %q in SkillsUpdated on forced rerun, got %+v", ids[0], report2.SkillsUpdated)
	}
	data2, err := os.ReadFile(skillMD)
	if err != nil {
		t.Fatalf("read skill md after force: %v", err)
	}
	if string(data2) == "user edited content" {
		t.Fatal("expected --force to overwrite the user edit")
	}
}

func TestRunPreservesUserEditedRulePathPatterns(t *testing.T) {
	projectRoot, catalog := initializedProject(t)
	ids := catalog.IDs()
	if len(ids) == 0 {
		t.Fatal("catalog has no skills")
	}
	id := ids[0]

	rulesPath := orchestrator.RulesPath(projectRoot)
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		t.Fatalf("read skill-rules.json: %v", err)
	}
	doc, err := rules.Parse(data)
	if err != nil {
		t.Fatalf("parse skill-rules.json: %v", err)
	}
	rule := doc.Rules[id]
	rule.PathPatterns = []string{"only/my/custom/**"}
	rule.Enabled = false
	doc.Rules[id] = rule
	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(rulesPath, out, 0o644); err != nil {
		t.Fatalf("write edited rules doc: %v", err)
	}

	if _, err := Run(context.Background(), Config{ProjectRoot: projectRoot, Force: true}, catalog); err != nil {
		t.Fatalf("Run: %v", err)
	}

	updatedData, err := os.ReadFile(rulesPath)
	if err != nil {
		t.Fatalf("read updated skill-rules.json: %v", err)
	}
	updatedDoc, err := rules.Parse(updatedData)
	if err != nil {
		t.Fatalf("parse updated skill-rules.json: %v", err)
	}
	got := updatedDoc.Rules[id]
	if got.Enabled {
		t.Fatal("expected Enabled=false to survive update")
	}
	if len(got.PathPatterns) != 1 || got.PathPatterns[0] != "only/my/custom/**" {
		t.Fatalf("PathPatterns = %v, want preserved custom pattern", got.PathPatterns)
	}
	if len(got.Keywords) == 0 {
		t.Fatal("expected Keywords to be regenerated, not empty")
	}
}

func TestRunRefusesInvalidRulesDocumentWithoutForce(t *testing.T) {
	projectRoot, catalog := initializedProject(t)
	rulesPath := orchestrator.RulesPath(projectRoot)
	if err := os.WriteFile(rulesPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt rules doc: %v", err)
	}

	_, err := Run(context.Background(), Config{ProjectRoot: projectRoot}, catalog)
	if err == nil {
		t.Fatal("expected error for unparseable rules document")
	}
	if _, ok := err.(*RulesDocumentInvalid); !ok {
		t.Fatalf("expected *RulesDocumentInvalid, got %T: %v", err, err)
	}
}

func TestPlatformDetectSmoke(t *testing.T) {
	info := platform.Detect()
	if info.WrapperExt != ".sh" && info.WrapperExt != ".ps1" {
		t.Fatalf("unexpected wrapper ext %q", info.WrapperExt)
	}
}

package activation

import (
	"os"
	"testing"

	"github.com/basket/catalyst/internal/rules"
)

func TestRecentWindowDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("CATALYST_RECENT_WINDOW")
	if got := RecentWindow(); got != DefaultRecentWindow {
		t.Fatalf("RecentWindow() = %d, want %d", got, DefaultRecentWindow)
	}
}

func TestRecentWindowHonorsEnvOverride(t *testing.T) {
	t.Setenv("CATALYST_RECENT_WINDOW", "5")
	if got := RecentWindow(); got != 5 {
		t.Fatalf("RecentWindow() = %d, want 5", got)
	}
}

func TestRecentWindowIgnoresInvalidValue(t *testing.T) {
	t.Setenv("CATALYST_RECENT_WINDOW", "not-a-number")
	if got := RecentWindow(); got != DefaultRecentWindow {
		t.Fatalf("RecentWindow() = %d, want default %d", got, DefaultRecentWindow)
	}
}

func TestScoreAutoSuggestScenario(t *testing.T) {
	// S1 from spec: one rule "backend" with keywords express/route.
	doc := &rules.Document{
		Version: "1.0",
		Rules: map[string]rules.SkillRule{
			"backend": {
				SkillID:  "backend",
				Priority: rules.PriorityMedium,
				Enabled:  true,
				Keywords: []string{"express", "route"},
			},
		},
	}
	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	scored := Score(doc, "add an Express route", nil)
	if len(scored) != 1 || scored[0].SkillID != "backend" {
		t.Fatalf("unexpected scored result: %+v", scored)
	}
}

func TestScoreEmptyPromptEmitsNothing(t *testing.T) {
	doc := &rules.Document{
		Version: "1.0",
		Rules: map[string]rules.SkillRule{
			"backend": {SkillID: "backend", Priority: rules.PriorityLow, Enabled: true, Keywords: []string{"express"}},
		},
	}
	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	scored := Score(doc, "", nil)
	if len(scored) != 0 {
		t.Fatalf("expected no matches for empty prompt, got %+v", scored)
	}
}

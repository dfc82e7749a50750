package rules

import "testing"

func TestParseValidDocument(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"rules": {
			"go-backend": {
				"skill_id": "go-backend",
				"enforcement": "suggest",
				"priority": "high",
				"keywords": ["goroutine", "channel"],
				"intent_patterns": ["(?i)write a (http )?handler"],
				"path_patterns": ["**/*.go"],
				"enabled": true
			}
		}
	}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(doc.Rules))
	}
}

func TestParseRejectsMissingMatcher(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"rules": {
			"empty-rule": {
				"skill_id": "empty-rule",
				"enforcement": "suggest",
				"priority": "low",
				"enabled": true
			}
		}
	}`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for rule with no matcher dimensions")
	}
}

func TestParseRejectsBadSlug(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"rules": {
			"Bad_ID": {
				"skill_id": "Bad_ID",
				"enforcement": "suggest",
				"priority": "low",
				"keywords": ["x"],
				"enabled": true
			}
		}
	}`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for non-slug skill_id")
	}
}

func TestScoreRanksByPriorityThenScore(t *testing.T) {
	doc := &Document{
		Version: "1.0",
		Rules: map[string]SkillRule{
			"low-prio": {
				SkillID: "low-prio", Priority: PriorityLow, Enabled: true,
				Keywords: []string{"test"},
			},
			"high-prio": {
				SkillID: "high-prio", Priority: PriorityHigh, Enabled: true,
				Keywords: []string{"test"},
			},
			"disabled": {
				SkillID: "disabled", Priority: PriorityHigh, Enabled: false,
				Keywords: []string{"test"},
			},
		},
	}
	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	scored := Score(doc, "please test this", nil, DefaultWeights)
	if len(scored) != 2 {
		t.Fatalf("len(scored) = %d, want 2 (disabled rule must be excluded)", len(scored))
	}
	if scored[0].SkillID != "high-prio" {
		t.Fatalf("scored[0].SkillID = %q, want high-prio", scored[0].SkillID)
	}
}

func TestScoreIntentPattern(t *testing.T) {
	doc := &Document{
		Version: "1.0",
		Rules: map[string]SkillRule{
			"handler-skill": {
				SkillID:        "handler-skill",
				Priority:       PriorityMedium,
				Enabled:        true,
				IntentPatterns: []string{`(?i)write.*handler`},
			},
		},
	}
	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	scored := Score(doc, "Write an HTTP handler for uploads", nil, DefaultWeights)
	if len(scored) != 1 || scored[0].Score != DefaultWeights.Intent {
		t.Fatalf("unexpected scored result: %+v", scored)
	}
}

func TestScorePathPatterns(t *testing.T) {
	doc := &Document{
		Version: "1.0",
		Rules: map[string]SkillRule{
			"frontend": {
				SkillID:      "frontend",
				Priority:     PriorityMedium,
				Enabled:      true,
				PathPatterns: []string{"src/**/*.{ts,tsx}"},
			},
		},
	}
	if err := doc.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	recent := []string{"src/components/Button.tsx", "README.md"}
	scored := Score(doc, "", recent, DefaultWeights)
	if len(scored) != 1 || scored[0].Score != DefaultWeights.Path {
		t.Fatalf("unexpected scored result: %+v", scored)
	}
}

func TestGlobMatchDoubleStar(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/*.go", "main.go", true},
		{"**/*.go", "internal/platform/lock.go", true},
		{"src/**/*.ts", "src/a/b/c.ts", true},
		{"src/**/*.ts", "lib/a.ts", false},
		{"*.md", "README.md", true},
		{"*.md", "docs/README.md", false},
	}
	for _, c := range cases {
		if got := GlobMatch(c.pattern, c.path); got != c.want {
			t.Errorf("GlobMatch(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestGlobMatchBraceExpansion(t *testing.T) {
	if !GlobMatch("**/*.{ts,tsx}", "src/components/Button.tsx") {
		t.Fatal("expected brace-expanded glob to match .tsx file")
	}
	if GlobMatch("**/*.{ts,tsx}", "src/main.go") {
		t.Fatal("expected brace-expanded glob not to match .go file")
	}
}

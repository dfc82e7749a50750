package orchestrator

import "github.com/basket/catalyst/internal/rules"

// defaultPathPatterns are the broad, safe path globs used unless a skill
// has a more specific entry below.
var defaultPathPatterns = []string{"src/**/*", "lib/**/*", "app/**/*", "tests/**/*"}

// ruleTableEntry is one row of the baked-in table keyed by skill id that
// init uses to generate skill-rules.json. Enabled defaults to true.
type ruleTableEntry struct {
	Keywords       []string
	IntentPatterns []string
	PathPatterns   []string
	Priority       rules.Priority
	Enforcement    rules.Enforcement
}

// ruleTable is the baked-in per-skill defaults table: keywords,
// intent_patterns, priority, and enforcement come from here rather than
// from user input. Extend this table when adding a new embedded skill
// bundle.
var ruleTable = map[string]ruleTableEntry{
	"skill-developer": {
		Keywords:       []string{"api", "endpoint", "route", "handler", "backend", "server"},
		IntentPatterns: []string{`(?i)\b(add|create|implement)\b.*\b(endpoint|route|api)\b`},
		PathPatterns:   defaultPathPatterns,
		Priority:       rules.PriorityMedium,
		Enforcement:    rules.Suggest,
	},
	"frontend-developer": {
		Keywords:       []string{"component", "react", "vue", "ui", "frontend", "css", "style"},
		IntentPatterns: []string{`(?i)\b(add|create|build)\b.*\b(component|page|view)\b`},
		PathPatterns:   []string{"**/*.{ts,tsx,js,jsx,vue,svelte}"},
		Priority:       rules.PriorityMedium,
		Enforcement:    rules.Suggest,
	},
	"test-writer": {
		Keywords:       []string{"test", "spec", "coverage", "unit test", "integration test"},
		IntentPatterns: []string{`(?i)\b(write|add)\b.*\btests?\b`},
		PathPatterns:   defaultPathPatterns,
		Priority:       rules.PriorityLow,
		Enforcement:    rules.Suggest,
	},
}

// DefaultRule returns the baked-in rule for skillID, ok=false if skillID
// has no table entry (the caller should fall back to a minimal
// keywordless-but-path-patterned rule rather than fail init).
func DefaultRule(skillID string) (rules.SkillRule, bool) {
	entry, ok := ruleTable[skillID]
	if !ok {
		return rules.SkillRule{}, false
	}
	return rules.SkillRule{
		SkillID:        skillID,
		Enforcement:    entry.Enforcement,
		Priority:       entry.Priority,
		Keywords:       entry.Keywords,
		IntentPatterns: entry.IntentPatterns,
		PathPatterns:   entry.PathPatterns,
		Enabled:        true,
	}, true
}

// MergeRuleUpdate regenerates the orchestrator-owned fields of existing
// (keywords, intent_patterns, priority, enforcement) from fresh, while
// preserving the user-editable fields (path_patterns, enabled).
func MergeRuleUpdate(existing, fresh rules.SkillRule) rules.SkillRule {
	merged := fresh
	merged.PathPatterns = existing.PathPatterns
	merged.Enabled = existing.Enabled
	return merged
}

// FallbackRule builds a minimal rule for a skill id with no ruleTable
// entry, so init never refuses to wire a selected skill just because the
// baked-in table hasn't been extended for it yet.
func FallbackRule(skillID string) rules.SkillRule {
	return rules.SkillRule{
		SkillID:      skillID,
		Enforcement:  rules.Suggest,
		Priority:     rules.PriorityLow,
		PathPatterns: defaultPathPatterns,
		Enabled:      true,
	}
}

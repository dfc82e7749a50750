// Package rules implements the SkillRule / RulesDocument schema
// and the path-glob / intent-pattern matching primitives the activation
// engine scores against. Patterns are compiled once and cached on the
// document so repeated Score calls never recompile a regex.
package rules

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/basket/catalyst/internal/schemas"
)

// Enforcement mirrors SkillRule.enforcement.
type Enforcement string

const (
	Suggest Enforcement = "suggest"
	Require Enforcement = "require"
)

// Priority mirrors SkillRule.priority; higher sorts first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// SkillRule is the declarative activation criteria for one skill.
type SkillRule struct {
	SkillID        string      `json:"skill_id"`
	Enforcement    Enforcement `json:"enforcement"`
	Priority       Priority    `json:"priority"`
	Keywords       []string    `json:"keywords,omitempty"`
	IntentPatterns []string    `json:"intent_patterns,omitempty"`
	PathPatterns   []string    `json:"path_patterns,omitempty"`
	Enabled        bool        `json:"enabled"`

	compiledIntents []*regexp.Regexp
}

// Document is the versioned skill_id -> SkillRule map.
type Document struct {
	Version string               `json:"version"`
	Rules   map[string]SkillRule `json:"rules"`
}

// Validate checks the invariants: slug-shaped, unique (map
// keys already guarantee uniqueness), version present, and at least one
// matcher dimension populated per rule.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Version) == "" {
		return fmt.Errorf("rules document missing version")
	}
	for id, rule := range d.Rules {
		if !slugPattern.MatchString(id) {
			return fmt.Errorf("invalid skill_id %q: must match %s", id, slugPattern.String())
		}
		if id != rule.SkillID {
			return fmt.Errorf("skill_id mismatch: map key %q vs rule.SkillID %q", id, rule.SkillID)
		}
		if len(rule.Keywords) == 0 && len(rule.IntentPatterns) == 0 && len(rule.PathPatterns) == 0 {
			return fmt.Errorf("rule %q has no keywords, intent_patterns, or path_patterns", id)
		}
	}
	return nil
}

// Compile precompiles every rule's intent_patterns once. Call after
// Parse/Validate and before any Score call; cheap to call repeatedly
// (re-derives the compiled slice each time) but the hot path should call it
// exactly once per loaded document.
func (d *Document) Compile() error {
	for id, rule := range d.Rules {
		compiled := make([]*regexp.Regexp, 0, len(rule.IntentPatterns))
		for _, pat := range rule.IntentPatterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return fmt.Errorf("rule %q: compile intent_pattern %q: %w", id, pat, err)
			}
			compiled = append(compiled, re)
		}
		rule.compiledIntents = compiled
		d.Rules[id] = rule
	}
	return nil
}

// Parse decodes and validates a RulesDocument, returning a JsonError-shaped
// wrapped error on malformed JSON (callers in the activation engine treat
// any error here as "emit nothing, log once, exit 0").
func Parse(data []byte) (*Document, error) {
	if err := schemas.ValidateRulesDocument(data); err != nil {
		return nil, fmt.Errorf("parse rules document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules document: %w", err)
	}
	if doc.Rules == nil {
		doc.Rules = map[string]SkillRule{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := doc.Compile(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal serializes the document back to JSON with stable key ordering
// (Go's encoding/json already sorts map keys).
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Weights control the relative contribution of each matcher dimension.
// Defaults follow the documented Open Question resolution:
// intent patterns are the strongest signal, then keywords, then path globs.
type Weights struct {
	Intent  int
	Keyword int
	Path    int
}

// DefaultWeights is used unless a future RulesDocument schema extension
// overrides them.
var DefaultWeights = Weights{Intent: 3, Keyword: 2, Path: 1}

// Scored pairs a rule with its computed relevance for one prompt + recent
// file-edit window.
type Scored struct {
	SkillID string
	Rule    SkillRule
	Score   int
}

// Score ranks every enabled rule in doc against prompt and recentPaths,
// keeping only rules with score > 0, sorted by (priority desc, score desc,
// skill_id asc) for deterministic, tie-broken output.
func Score(doc *Document, prompt string, recentPaths []string, weights Weights) []Scored {
	lowerPrompt := strings.ToLower(prompt)

	var out []Scored
	for id, rule := range doc.Rules {
		if !rule.Enabled {
			continue
		}
		score := 0
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lowerPrompt, strings.ToLower(kw)) {
				score += weights.Keyword
			}
		}
		for _, re := range rule.compiledIntents {
			if re.MatchString(prompt) {
				score += weights.Intent
			}
		}
		for _, pat := range rule.PathPatterns {
			for _, p := range recentPaths {
				if GlobMatch(pat, p) {
					score += weights.Path
					break
				}
			}
		}
		if score > 0 {
			out = append(out, Scored{SkillID: id, Rule: rule, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Rule.Priority.rank(), out[j].Rule.Priority.rank()
		if pi != pj {
			return pi > pj
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SkillID < out[j].SkillID
	})
	return out
}

// GlobMatch matches a POSIX-style glob (forward slashes, "**" meaning any
// depth including zero) against a path. Both operands are converted to
// forward slashes before matching so Windows-style paths compare correctly
// against globs authored with "/".
func GlobMatch(pattern, path string) bool {
	pattern = toPosix(pattern)
	path = toPosix(path)
	return globMatchSegments(splitGlob(pattern), strings.Split(strings.TrimPrefix(path, "/"), "/"))
}

func toPosix(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func splitGlob(pattern string) []string {
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" {
		return nil
	}
	return strings.Split(pattern, "/")
}

// globMatchSegments implements "**" (any depth, including zero segments)
// and per-segment filepath.Match (which already supports *, ?, [...], and
// brace-free character classes).
func globMatchSegments(patternSegs, pathSegs []string) bool {
	if len(patternSegs) == 0 {
		return len(pathSegs) == 0
	}
	head := patternSegs[0]
	if head == "**" {
		if globMatchSegments(patternSegs[1:], pathSegs) {
			return true
		}
		if len(pathSegs) == 0 {
			return false
		}
		return globMatchSegments(patternSegs, pathSegs[1:])
	}
	if len(pathSegs) == 0 {
		return false
	}
	ok, err := matchSegment(head, pathSegs[0])
	if err != nil || !ok {
		return false
	}
	return globMatchSegments(patternSegs[1:], pathSegs[1:])
}

// matchSegment supports filepath.Match plus a brace-expansion extension
// ("*.{ts,tsx,js,jsx}") the way path_patterns examples use it.
func matchSegment(pattern, name string) (bool, error) {
	if alt, ok := expandBraces(pattern); ok {
		for _, p := range alt {
			if ok, err := filepath.Match(p, name); err == nil && ok {
				return true, nil
			}
		}
		return false, nil
	}
	return filepath.Match(pattern, name)
}

func expandBraces(pattern string) ([]string, bool) {
	start := strings.Index(pattern, "{")
	end := strings.Index(pattern, "}")
	if start < 0 || end < 0 || end < start {
		return nil, false
	}
	prefix := pattern[:start]
	suffix := pattern[end+1:]
	options := strings.Split(pattern[start+1:end], ",")
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, prefix+o+suffix)
	}
	return out, true
}

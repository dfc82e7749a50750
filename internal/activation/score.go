package activation

import (
	"os"
	"strconv"

	"github.com/basket/catalyst/internal/rules"
)

// DefaultRecentWindow is the number of most-recently-tracked file paths
// consulted for path_patterns scoring, absent CATALYST_RECENT_WINDOW.
const DefaultRecentWindow = 20

// RecentWindow returns the configured recent-files window size, reading
// CATALYST_RECENT_WINDOW and falling back to DefaultRecentWindow for an
// absent, empty, non-numeric, or non-positive value.
func RecentWindow() int {
	v := os.Getenv("CATALYST_RECENT_WINDOW")
	if v == "" {
		return DefaultRecentWindow
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultRecentWindow
	}
	return n
}

// ScoredRule is the activation-engine-facing alias of rules.Scored.
type ScoredRule = rules.Scored

// Score ranks doc's enabled rules against prompt and recentPaths (already
// capped to the caller's window) using the fixed weight policy
// (intent=3, keyword=2, path=1).
func Score(doc *rules.Document, prompt string, recentPaths []string) []ScoredRule {
	return rules.Score(doc, prompt, recentPaths, rules.DefaultWeights)
}

package activation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// HookSpecificOutput mirrors the host reply schema's nested object.
type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// Reply is the single JSON object a hook may write to stdout. The
// optional top-level string fields are omitted when empty;
// hookSpecificOutput is always serialized. On failure or an empty
// result, nothing is written at all.
type Reply struct {
	Decision           string             `json:"decision,omitempty"`
	Reason             string             `json:"reason,omitempty"`
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
	SystemMessage      string             `json:"systemMessage,omitempty"`
}

// Emit writes the host reply schema naming every scored rule's skill_id in
// additionalContext, in already-sorted order. If scored is empty, Emit
// writes nothing and returns nil.
func Emit(w io.Writer, scored []ScoredRule) error {
	if len(scored) == 0 {
		return nil
	}

	var lines []string
	for _, s := range scored {
		action := "Consider"
		if s.Rule.Enforcement == "require" {
			action = "Apply"
		}
		lines = append(lines, fmt.Sprintf("%s skill %q (priority %s, score %d)", action, s.SkillID, s.Rule.Priority, s.Score))
	}

	reply := Reply{
		HookSpecificOutput: HookSpecificOutput{
			HookEventName:     "UserPromptSubmit",
			AdditionalContext: strings.Join(lines, "\n"),
		},
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(reply); err != nil {
		return fmt.Errorf("emit reply: %w", err)
	}
	return nil
}

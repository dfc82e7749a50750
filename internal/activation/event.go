// Package activation implements hook A (prompt-submit): parse the host's
// stdin event, score it against a rules document plus recent file-edit
// context, and emit a suggestion reply.
package activation

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the two hook-invocation shapes.
type EventType string

const (
	EventPromptSubmit EventType = "prompt-submit"
	EventPostToolUse  EventType = "post-tool-use"
)

// Event is the parsed, dialect-independent representation of a hook's
// stdin payload.
type Event struct {
	Type      EventType
	SessionID string // opaque; may be empty if the host's dialect omits it
	CWD       string
	Prompt    string   // set for EventPromptSubmit
	ToolName  string   // set for EventPostToolUse
	Paths     []string // file_path(s) touched, set for EventPostToolUse
}

// dialectA is the tagged, preferred wire shape. session_id is accepted
// even though minimal examples of it often omit the field, since Event
// carries it regardless of dialect.
type dialectA struct {
	HookEventName string          `json:"hook_event_name"`
	SessionID     string          `json:"session_id"`
	CWD           string          `json:"cwd"`
	Prompt        string          `json:"prompt"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input"`
}

// dialectB is the older untagged legacy shape: same fields plus
// session_id (carried into Event) and extras we don't otherwise use
// (transcript_path, permission_mode).
type dialectB struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	PermissionMode string          `json:"permission_mode"`
	CWD            string          `json:"cwd"`
	Prompt         string          `json:"prompt"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
}

type toolInputSingle struct {
	FilePath string `json:"file_path"`
}

type toolInputMulti struct {
	Edits []toolInputSingle `json:"edits"`
}

// ParseEvent tries the tagged dialect first, falling back to the untagged
// legacy shape. Unknown fields in either dialect are non-fatal.
func ParseEvent(data []byte) (Event, error) {
	var a dialectA
	if err := json.Unmarshal(data, &a); err == nil && a.HookEventName != "" {
		return fromDialectA(a)
	}

	var b dialectB
	if err := json.Unmarshal(data, &b); err != nil {
		return Event{}, fmt.Errorf("parse hook event: %w", err)
	}
	if b.CWD == "" && b.Prompt == "" && b.ToolName == "" {
		return Event{}, fmt.Errorf("parse hook event: unrecognized payload shape")
	}
	return fromDialectB(b)
}

func fromDialectA(a dialectA) (Event, error) {
	switch a.HookEventName {
	case "userPromptSubmit":
		return Event{Type: EventPromptSubmit, SessionID: a.SessionID, CWD: a.CWD, Prompt: a.Prompt}, nil
	case "postToolUse":
		paths, err := extractPaths(a.ToolName, a.ToolInput)
		if err != nil {
			return Event{}, err
		}
		return Event{Type: EventPostToolUse, SessionID: a.SessionID, CWD: a.CWD, ToolName: a.ToolName, Paths: paths}, nil
	default:
		return Event{}, fmt.Errorf("unknown hook_event_name %q", a.HookEventName)
	}
}

func fromDialectB(b dialectB) (Event, error) {
	if b.ToolName != "" {
		paths, err := extractPaths(b.ToolName, b.ToolInput)
		if err != nil {
			return Event{}, err
		}
		return Event{Type: EventPostToolUse, SessionID: b.SessionID, CWD: b.CWD, ToolName: b.ToolName, Paths: paths}, nil
	}
	return Event{Type: EventPromptSubmit, SessionID: b.SessionID, CWD: b.CWD, Prompt: b.Prompt}, nil
}

func extractPaths(toolName string, raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if toolName == "MultiEdit" {
		var multi toolInputMulti
		if err := json.Unmarshal(raw, &multi); err != nil {
			return nil, fmt.Errorf("parse tool_input.edits: %w", err)
		}
		paths := make([]string, 0, len(multi.Edits))
		for _, e := range multi.Edits {
			if e.FilePath != "" {
				paths = append(paths, e.FilePath)
			}
		}
		return paths, nil
	}
	var single toolInputSingle
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("parse tool_input.file_path: %w", err)
	}
	if single.FilePath == "" {
		return nil, nil
	}
	return []string{single.FilePath}, nil
}

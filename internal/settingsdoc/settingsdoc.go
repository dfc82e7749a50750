// Package settingsdoc implements the SettingsDocument schema:
// a nested map of event_name -> list of hook matcher groups, plus the
// merge logic that lets the orchestrator own its entries while preserving
// anything the user (or the host) added by hand.
package settingsdoc

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"

	"github.com/basket/catalyst/internal/schemas"
)

// Hook is one command invocation wired to an event.
type Hook struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// MatcherGroup pairs an optional matcher regex with the hooks it fires.
// Matchers is a full Go regexp: the host's own matcher dialect is
// undocumented, so a strict regex superset is the safer default.
type MatcherGroup struct {
	Matcher string `json:"matchers,omitempty"`
	Hooks   []Hook `json:"hooks"`
}

// Document is the full settings.json contents. Fields beyond Events are
// preserved verbatim across Merge via Extra so unrelated top-level host
// settings are never clobbered.
type Document struct {
	Events map[string][]MatcherGroup `json:"-"`
	Extra  map[string]json.RawMessage `json:"-"`
}

const (
	EventUserPromptSubmit = "UserPromptSubmit"
	EventPostToolUse      = "PostToolUse"
)

// New returns an empty document ready for Ensure calls.
func New() *Document {
	return &Document{Events: map[string][]MatcherGroup{}, Extra: map[string]json.RawMessage{}}
}

// Parse decodes settings.json. Unknown top-level keys are kept in Extra and
// re-emitted by Marshal so round-tripping never drops host-owned fields.
func Parse(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings document: %w", err)
	}
	doc := New()
	for key, value := range raw {
		switch key {
		case "hooks":
			if err := schemas.ValidateSettingsHooks(value); err != nil {
				return nil, fmt.Errorf("parse settings document: hooks: %w", err)
			}
			var events map[string][]MatcherGroup
			if err := json.Unmarshal(value, &events); err != nil {
				return nil, fmt.Errorf("parse settings document: hooks: %w", err)
			}
			doc.Events = events
		default:
			doc.Extra[key] = value
		}
	}
	if doc.Events == nil {
		doc.Events = map[string][]MatcherGroup{}
	}
	return doc, nil
}

// Marshal serializes the document with the "hooks" key holding Events and
// any preserved Extra top-level keys alongside it, sorted for determinism.
func (d *Document) Marshal() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range d.Extra {
		out[k] = v
	}
	hooksJSON, err := json.Marshal(d.Events)
	if err != nil {
		return nil, fmt.Errorf("marshal settings document: %w", err)
	}
	out["hooks"] = hooksJSON
	return marshalSorted(out)
}

// marshalSorted renders a map[string]json.RawMessage with keys in sorted
// order, since json.Marshal on a map already sorts string keys but we keep
// this explicit helper for clarity and to match the posix-path serialization
// discipline used elsewhere (deterministic byte-identical output is an
// idempotence requirement).
func marshalSorted(m map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte("{\n")
	for i, k := range keys {
		keyJSON, _ := json.Marshal(k)
		buf = append(buf, "  "...)
		buf = append(buf, keyJSON...)
		buf = append(buf, ": "...)
		buf = append(buf, reindent(m[k], "  ")...)
		if i != len(keys)-1 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
	}
	buf = append(buf, '}')
	return buf, nil
}

func reindent(raw json.RawMessage, indent string) []byte {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	pretty, err := json.MarshalIndent(v, indent, "  ")
	if err != nil {
		return raw
	}
	return pretty
}

// OwnedCommandPattern matches wrapper-script command lines the orchestrator
// itself generates, so Merge can tell "ours, safe to replace" from "user
// added this, leave it alone."
var OwnedCommandPattern = regexp.MustCompile(`(?:^|[/\\])catalyst-(activate|track)(\.sh|\.ps1)?(\s|"|$)`)

// EnsureCoreEvents guarantees the two default entries exist
// invariant), wiring activateCommand to UserPromptSubmit and
// trackCommand to PostToolUse with the Edit/Write/MultiEdit/NotebookEdit
// matcher. Existing groups whose Hooks all match OwnedCommandPattern are
// replaced; anything else is left untouched.
func (d *Document) EnsureCoreEvents(activateCommand, trackCommand string) {
	d.Events[EventUserPromptSubmit] = replaceOwned(d.Events[EventUserPromptSubmit], MatcherGroup{
		Hooks: []Hook{{Type: "command", Command: activateCommand}},
	})
	d.Events[EventPostToolUse] = replaceOwned(d.Events[EventPostToolUse], MatcherGroup{
		Matcher: "Edit|MultiEdit|Write|NotebookEdit",
		Hooks:   []Hook{{Type: "command", Command: trackCommand}},
	})
}

// replaceOwned drops every group in groups whose every hook command matches
// OwnedCommandPattern, then appends replacement — preserving user-authored
// groups that share the event but do not use our wrapper commands.
func replaceOwned(groups []MatcherGroup, replacement MatcherGroup) []MatcherGroup {
	kept := make([]MatcherGroup, 0, len(groups)+1)
	for _, g := range groups {
		if isOwnedGroup(g) {
			continue
		}
		kept = append(kept, g)
	}
	kept = append(kept, replacement)
	return kept
}

func isOwnedGroup(g MatcherGroup) bool {
	if len(g.Hooks) == 0 {
		return false
	}
	for _, h := range g.Hooks {
		if !OwnedCommandPattern.MatchString(h.Command) {
			return false
		}
	}
	return true
}

// Merge combines base (the on-disk document, possibly user-edited) with
// ours (the orchestrator's desired state), keeping base's user entries and
// replacing groups we own, plus any base group identical to one of ours,
// with ours. Merge is idempotent:
// Merge(base, ours) == Merge(Merge(base, ours), ours).
func Merge(base, ours *Document) *Document {
	result := New()
	for k, v := range base.Extra {
		result.Extra[k] = v
	}
	for k, v := range ours.Extra {
		result.Extra[k] = v
	}

	events := map[string][]MatcherGroup{}
	for event, groups := range base.Events {
		events[event] = append([]MatcherGroup(nil), groups...)
	}
	for event, oursGroups := range ours.Events {
		existing := events[event]
		kept := make([]MatcherGroup, 0, len(existing))
		for _, g := range existing {
			if isOwnedGroup(g) {
				continue
			}
			duplicate := false
			for _, o := range oursGroups {
				if reflect.DeepEqual(g, o) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				kept = append(kept, g)
			}
		}
		kept = append(kept, oursGroups...)
		events[event] = kept
	}
	result.Events = events
	return result
}

// Validate checks the invariant that the two core entries exist and
// that every hook command references an existing wrapper, given a
// resolver that reports whether a command string's referenced path exists.
func (d *Document) Validate(wrapperExists func(command string) bool) error {
	for _, required := range []string{EventUserPromptSubmit, EventPostToolUse} {
		if len(d.Events[required]) == 0 {
			return fmt.Errorf("settings document missing required event %q", required)
		}
	}
	for event, groups := range d.Events {
		for _, g := range groups {
			for _, h := range g.Hooks {
				if wrapperExists != nil && !wrapperExists(h.Command) {
					return fmt.Errorf("event %q references missing wrapper command %q", event, h.Command)
				}
			}
		}
	}
	return nil
}

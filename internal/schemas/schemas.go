// Package schemas compiles the embedded JSON Schemas for catalyst's two
// on-disk document formats (RulesDocument, SettingsDocument.hooks) and
// validates decoded payloads against them before the richer hand-written
// semantic checks in internal/rules and internal/settingsdoc run. This
// catches shape errors — wrong types, unknown enum values, missing
// required fields — that a bespoke Validate method would otherwise have
// to hand-check field by field.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed rules.schema.json
var rulesSchemaJSON []byte

//go:embed settings_hooks.schema.json
var settingsHooksSchemaJSON []byte

var (
	rulesOnce   sync.Once
	rulesSchema *jsonschema.Schema
	rulesErr    error

	settingsOnce   sync.Once
	settingsSchema *jsonschema.Schema
	settingsErr    error
)

func compile(raw []byte, resourceName string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", resourceName, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", resourceName, err)
	}
	schema, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", resourceName, err)
	}
	return schema, nil
}

func rules() (*jsonschema.Schema, error) {
	rulesOnce.Do(func() {
		rulesSchema, rulesErr = compile(rulesSchemaJSON, "rules.schema.json")
	})
	return rulesSchema, rulesErr
}

func settingsHooks() (*jsonschema.Schema, error) {
	settingsOnce.Do(func() {
		settingsSchema, settingsErr = compile(settingsHooksSchemaJSON, "settings_hooks.schema.json")
	})
	return settingsSchema, settingsErr
}

// ValidateRulesDocument checks raw RulesDocument JSON against the embedded
// schema. Callers should run this before any semantic validation so schema
// violations are reported in terms of the offending field path.
func ValidateRulesDocument(data []byte) error {
	schema, err := rules()
	if err != nil {
		return err
	}
	return validate(schema, data)
}

// ValidateSettingsHooks checks raw JSON for the "hooks" key of a
// SettingsDocument against the embedded schema.
func ValidateSettingsHooks(data []byte) error {
	schema, err := settingsHooks()
	if err != nil {
		return err
	}
	return validate(schema, data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

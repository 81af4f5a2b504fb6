package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const rulesSchemaURL = "memory://schemas/tournament-rules.json"

//go:embed rules.schema.json
var rulesSchema []byte

// RulesValidator checks a tournament rules document: either a list of rules
// (strings or {title, description, order} objects) or a free-form object.
type RulesValidator struct {
	schema *jsonschema.Schema
}

// NewRulesValidator compiles the embedded rules schema.
func NewRulesValidator() (*RulesValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(rulesSchemaURL, bytes.NewReader(rulesSchema)); err != nil {
		return nil, fmt.Errorf("register rules schema: %w", err)
	}

	compiled, err := compiler.Compile(rulesSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile rules schema: %w", err)
	}
	return &RulesValidator{schema: compiled}, nil
}

// MustRulesValidator is NewRulesValidator for package-level wiring; the schema is embedded.
func MustRulesValidator() *RulesValidator {
	v, err := NewRulesValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate decodes raw and checks it against the schema.
func (v *RulesValidator) Validate(raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("rules document is empty")
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("decode rules: %w", err)
	}

	if err := v.schema.Validate(document); err != nil {
		return fmt.Errorf("rules validation: %w", err)
	}
	return nil
}

package actions

import (
	"context"
	"encoding/json"
)

// SchemasAction returns the payload schemas of every registered action so
// calling agents can discover the accepted input shapes programmatically.
// It is pure: no side effects, identical output across calls.
type SchemasAction struct {
	registry *Registry
}

// NewSchemasAction creates the action over the given registry.
func NewSchemasAction(registry *Registry) *SchemasAction {
	return &SchemasAction{registry: registry}
}

// Name returns the action name.
func (a *SchemasAction) Name() string {
	return "get_payload_schemas"
}

// Description returns the action description.
func (a *SchemasAction) Description() string {
	return "Return the payload schema for every available action. Actions with a null payload accept no input."
}

// Payload returns nil: this action takes no input.
func (a *SchemasAction) Payload() map[string]FieldSpec {
	return nil
}

// Execute returns the schema mapping.
func (a *SchemasAction) Execute(_ context.Context, _ json.RawMessage) (any, error) {
	return a.registry.Schemas(), nil
}

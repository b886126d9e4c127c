// Package actions exposes the orchestrator's operations through a small
// dispatch shim: named actions that accept an optional JSON payload and
// return a JSON-shaped result. The same registry backs both the one-shot
// CLI invocation and the HTTP server.
package actions

import (
	"context"
	"encoding/json"
)

// Action is a dispatchable operation.
type Action interface {
	// Name is the unique identifier used for dispatch.
	Name() string

	// Description is a human-readable summary of what the action does.
	Description() string

	// Payload describes the accepted input fields, or nil for actions
	// that take no payload. This is discovery metadata for calling
	// agents, not enforced validation.
	Payload() map[string]FieldSpec

	// Execute runs the action. payload may be nil or empty for actions
	// without input. The returned value is marshaled to JSON for the
	// caller.
	Execute(ctx context.Context, payload json.RawMessage) (any, error)
}

// FieldSpec describes one payload field for programmatic discovery.
type FieldSpec struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Schema is the discovery entry for one action. A nil Payload marshals as
// JSON null, the marker for actions that accept no input.
type Schema struct {
	Description string               `json:"description"`
	Payload     map[string]FieldSpec `json:"payload"`
}

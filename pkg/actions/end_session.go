package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/onkernel/profiles-demo/pkg/orchestrator"
)

// EndSessionAction terminates a session, committing its state into the
// bound profile.
type EndSessionAction struct {
	orch *orchestrator.Orchestrator
}

// NewEndSessionAction creates the action.
func NewEndSessionAction(orch *orchestrator.Orchestrator) *EndSessionAction {
	return &EndSessionAction{orch: orch}
}

// Name returns the action name.
func (a *EndSessionAction) Name() string {
	return "end_session_and_save_profile"
}

// Description returns the action description.
func (a *EndSessionAction) Description() string {
	return "End a browser session. Sessions created by create_profile_browser save their authenticated state into the bound profile on termination."
}

// Payload describes the accepted input.
func (a *EndSessionAction) Payload() map[string]FieldSpec {
	return map[string]FieldSpec{
		"session_id": {
			Type:        "string",
			Required:    true,
			Description: "Identifier of the session to terminate",
		},
	}
}

type endSessionPayload struct {
	SessionID string `json:"session_id"`
}

// Execute runs the operation. It never returns an error: every outcome is
// reported through the success flag.
func (a *EndSessionAction) Execute(ctx context.Context, payload json.RawMessage) (any, error) {
	var p endSessionPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	}
	return a.orch.EndSessionAndSaveProfile(ctx, p.SessionID), nil
}

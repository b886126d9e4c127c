package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/onkernel/profiles-demo/pkg/orchestrator"
)

// ExecuteTaskAction runs an LLM-driven task against a session bound to a
// saved profile.
type ExecuteTaskAction struct {
	orch *orchestrator.Orchestrator
}

// NewExecuteTaskAction creates the action.
func NewExecuteTaskAction(orch *orchestrator.Orchestrator) *ExecuteTaskAction {
	return &ExecuteTaskAction{orch: orch}
}

// Name returns the action name.
func (a *ExecuteTaskAction) Name() string {
	return "execute_task_with_profile"
}

// Description returns the action description.
func (a *ExecuteTaskAction) Description() string {
	return "Run a natural-language task in a browser session bound to an existing profile. The session starts from the profile's saved state but never writes back to it. Optionally extracts structured data after the task."
}

// Payload describes the accepted input.
func (a *ExecuteTaskAction) Payload() map[string]FieldSpec {
	return map[string]FieldSpec{
		"profile_name": {
			Type:        "string",
			Required:    true,
			Description: "Name of the saved profile to load into the session",
		},
		"task": {
			Type:        "string",
			Required:    true,
			Description: "Natural-language instruction for the automation agent",
		},
		"start_url": {
			Type:        "string",
			Required:    false,
			Description: "URL to load before the task begins",
		},
		"extract_instructions": {
			Type:        "string",
			Required:    false,
			Description: "Natural-language description of structured data to extract after the task; any keys and value types are accepted",
		},
	}
}

// Execute runs the operation. It never returns an error: failures are
// reported through the outcome's success flag and error field.
func (a *ExecuteTaskAction) Execute(ctx context.Context, payload json.RawMessage) (any, error) {
	var req orchestrator.TaskRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	}
	return a.orch.ExecuteTaskWithProfile(ctx, req), nil
}

package actions

import (
	"context"
	"encoding/json"

	"github.com/onkernel/profiles-demo/pkg/orchestrator"
)

// CreateProfileBrowserAction opens a profile-bound browser session for
// interactive authentication.
type CreateProfileBrowserAction struct {
	orch *orchestrator.Orchestrator
}

// NewCreateProfileBrowserAction creates the action.
func NewCreateProfileBrowserAction(orch *orchestrator.Orchestrator) *CreateProfileBrowserAction {
	return &CreateProfileBrowserAction{orch: orch}
}

// Name returns the action name.
func (a *CreateProfileBrowserAction) Name() string {
	return "create_profile_browser"
}

// Description returns the action description.
func (a *CreateProfileBrowserAction) Description() string {
	return "Create a new browser profile and open a live browser session bound to it. Open the returned live view URL to log in to sites; then call end_session_and_save_profile to persist the authenticated state."
}

// Payload returns nil: this action takes no input.
func (a *CreateProfileBrowserAction) Payload() map[string]FieldSpec {
	return nil
}

// Execute runs the operation. A session remains open after this returns;
// the caller owns its termination.
func (a *CreateProfileBrowserAction) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	return a.orch.CreateProfileBrowser(ctx)
}

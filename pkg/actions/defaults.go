package actions

import "github.com/onkernel/profiles-demo/pkg/orchestrator"

// NewDefaultRegistry builds the registry with the full action set wired to
// the given orchestrator.
func NewDefaultRegistry(orch *orchestrator.Orchestrator) *Registry {
	r := NewRegistry()

	// Registration of the fixed action set cannot collide.
	_ = r.Register(NewCreateProfileBrowserAction(orch))
	_ = r.Register(NewEndSessionAction(orch))
	_ = r.Register(NewExecuteTaskAction(orch))
	_ = r.Register(NewSchemasAction(r))

	return r
}

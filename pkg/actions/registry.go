package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Registry holds the dispatchable actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action. Registering a duplicate name is a programming
// error and fails.
func (r *Registry) Register(a Action) error {
	if _, exists := r.actions[a.Name()]; exists {
		return fmt.Errorf("action %q already registered", a.Name())
	}
	r.actions[a.Name()] = a
	return nil
}

// Get returns the named action.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered action names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the named action with the given payload.
func (r *Registry) Dispatch(ctx context.Context, name string, payload json.RawMessage) (any, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	return a.Execute(ctx, payload)
}

// Schemas returns the discovery mapping for every registered action. It is
// side-effect free and stable across calls.
func (r *Registry) Schemas() map[string]Schema {
	schemas := make(map[string]Schema, len(r.actions))
	for name, a := range r.actions {
		schemas[name] = Schema{
			Description: a.Description(),
			Payload:     a.Payload(),
		}
	}
	return schemas
}

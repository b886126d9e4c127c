// Package agent defines the contract for an LLM-driven automation agent
// that executes natural-language tasks against a live browser session and
// can extract structured data from the page afterwards.
package agent

import "context"

// Viewport is the virtual screen size the agent drives the browser at.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport matches the fixed viewport the orchestrator runs tasks
// under.
var DefaultViewport = Viewport{Width: 1280, Height: 720}

// Config wires an agent to a browser session and an LLM.
type Config struct {
	// ControlURL is the CDP websocket endpoint of the session to drive.
	ControlURL string

	// StartURL, if set, is navigated to before the task begins.
	StartURL string

	// APIKey authenticates against the LLM provider.
	APIKey string

	// Model overrides the provider's default model when non-empty.
	Model string

	Viewport Viewport
}

// Result is the opaque outcome of a task execution. Message carries
// whatever the agent reports back; callers pass it through unchanged.
type Result struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Schema describes the shape of data an extraction should produce. It is
// JSON-schema shaped and deliberately open: extraction accepts arbitrary
// keys with arbitrary value types.
type Schema map[string]any

// OpenSchema returns a schema accepting any keys and any value types.
func OpenSchema() Schema {
	return Schema{
		"type":                 "object",
		"additionalProperties": true,
	}
}

// Handle is a started agent bound to one browser session.
type Handle interface {
	// Act executes a natural-language task against the session.
	Act(ctx context.Context, task string) (*Result, error)

	// Extract pulls structured data off the current page per the
	// instructions and schema. It may fail independently of Act.
	Extract(ctx context.Context, instructions string, schema Schema) (map[string]any, error)

	// Stop releases agent resources. Best effort; callers log failures
	// and move on.
	Stop() error
}

// Launcher starts agents. Implementations connect to the session's control
// channel and hold it until Stop.
type Launcher interface {
	Start(ctx context.Context, cfg Config) (Handle, error)
}

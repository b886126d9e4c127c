// Package browser defines the contract this application uses to talk to a
// browser provisioning service: a platform that creates durable profiles,
// launches live browser sessions bound to them, and tears sessions down.
//
// The orchestrator only ever sees this interface. Concrete implementations
// live in the remote (hosted HTTP API) and local (playwright-backed)
// subpackages and are injected at startup, which keeps the orchestration
// logic testable with fakes.
package browser

import "context"

// Profile is a durable, named bundle of browser state (cookies, local
// storage) owned by the provisioning service. This application creates
// profiles but never deletes them.
type Profile struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ProfileRef binds a session to a profile by name. SaveChanges controls
// whether the session commits its state back into the profile when the
// session is deleted cleanly.
type ProfileRef struct {
	Name        string `json:"name"`
	SaveChanges bool   `json:"save_changes"`
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Profile is optional; a session with no profile starts from a blank
	// browser state and persists nothing.
	Profile *ProfileRef

	// Stealth enables residential proxying and automated challenge
	// solving on providers that support it. Local implementations may
	// accept and ignore it.
	Stealth bool
}

// Session is a live, addressable browser instance.
type Session struct {
	// ID is the opaque identifier used for deletion.
	ID string `json:"session_id"`

	// LiveViewURL is a URL a human can open to watch and drive the
	// browser interactively (for example to log in to a site).
	LiveViewURL string `json:"browser_live_view_url"`

	// ControlURL is the CDP websocket endpoint automation clients
	// connect to.
	ControlURL string `json:"cdp_ws_url"`
}

// Provisioner is the consumed surface of a browser provisioning service.
type Provisioner interface {
	// CreateProfile creates a named profile. If a profile with that name
	// already exists it returns an error satisfying IsConflict.
	CreateProfile(ctx context.Context, name string) (*Profile, error)

	// CreateSession launches a browser session. The returned session is
	// live and billable until DeleteSession is called.
	CreateSession(ctx context.Context, opts SessionOptions) (*Session, error)

	// DeleteSession terminates a session. For sessions created with
	// SaveChanges enabled, the service commits browser state into the
	// bound profile as part of termination.
	DeleteSession(ctx context.Context, sessionID string) error
}

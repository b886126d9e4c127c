// Package orchestrator sequences the profile/session lifecycle behind the
// three user-facing operations: creating a profile-bound browser for
// interactive login, ending a session so its state commits to the profile,
// and running an LLM-driven task against a saved profile.
//
// The orchestrator is coupled only to the browser.Provisioner and
// agent.Launcher contracts; concrete service clients are injected.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onkernel/profiles-demo/pkg/agent"
	"github.com/onkernel/profiles-demo/pkg/browser"
	"github.com/onkernel/profiles-demo/pkg/logging"
)

// Orchestrator coordinates the browser provisioning service and the
// automation agent. One Orchestrator serves many operation invocations;
// it holds no per-invocation state.
type Orchestrator struct {
	provisioner browser.Provisioner
	launcher    agent.Launcher
	llmAPIKey   string
	llmModel    string
	viewport    agent.Viewport
	log         *logging.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithViewport overrides the fixed viewport tasks run under.
func WithViewport(vp agent.Viewport) Option {
	return func(o *Orchestrator) {
		o.viewport = vp
	}
}

// WithModel sets the LLM model passed to the agent.
func WithModel(model string) Option {
	return func(o *Orchestrator) {
		o.llmModel = model
	}
}

// New creates an Orchestrator. llmAPIKey may be empty; it is only required
// by ExecuteTaskWithProfile, which checks it before creating any session.
func New(provisioner browser.Provisioner, launcher agent.Launcher, llmAPIKey string, log *logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provisioner: provisioner,
		launcher:    launcher,
		llmAPIKey:   llmAPIKey,
		viewport:    agent.DefaultViewport,
		log:         log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// generateProfileName returns a fresh profile name of the form
// profile_<unix-ms>_<random>. Collisions are astronomically unlikely, but
// CreateProfileBrowser still tolerates them.
func generateProfileName() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("profile_%d_%s", time.Now().UnixMilli(), suffix)
}

// CreateProfileBrowser generates a profile, then opens a session bound to
// it with save-changes and stealth enabled. The returned live view URL is
// meant for a human to authenticate interactively; the session stays open
// after this returns and the caller owns its termination via
// EndSessionAndSaveProfile.
func (o *Orchestrator) CreateProfileBrowser(ctx context.Context) (*CreateProfileBrowserResult, error) {
	name := generateProfileName()

	if _, err := o.provisioner.CreateProfile(ctx, name); err != nil {
		if !browser.IsConflict(err) {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		// A conflict on a freshly generated name means the profile is
		// already there; proceeding with it is safe.
		o.log.Warnf("profile %s already exists, continuing", name)
	}

	sess, err := o.provisioner.CreateSession(ctx, browser.SessionOptions{
		Profile: &browser.ProfileRef{Name: name, SaveChanges: true},
		Stealth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	o.log.Infof("created profile %s with session %s", name, sess.ID)

	return &CreateProfileBrowserResult{
		BrowserLiveViewURL: sess.LiveViewURL,
		ProfileName:        name,
		SessionID:          sess.ID,
	}, nil
}

// EndSessionAndSaveProfile terminates a session. For sessions created with
// save-changes enabled the provisioning service commits browser state into
// the bound profile as part of termination; there is no separate save
// step. This operation never fails hard: every outcome is reported through
// the Success flag.
func (o *Orchestrator) EndSessionAndSaveProfile(ctx context.Context, sessionID string) *EndSessionResult {
	if sessionID == "" {
		o.log.Warnf("end session called without a session id")
		return &EndSessionResult{Success: false}
	}

	if err := o.provisioner.DeleteSession(ctx, sessionID); err != nil {
		o.log.Errorf("failed to delete session %s: %v", sessionID, err)
		return &EndSessionResult{Success: false}
	}

	o.log.Infof("session %s ended, profile state saved", sessionID)
	return &EndSessionResult{Success: true}
}

// ExecuteTaskWithProfile runs a natural-language task against a session
// bound to an existing profile, optionally extracting structured data
// afterwards. The session is created with save-changes disabled so the
// profile is never mutated by task runs.
//
// Every failure is reported through the returned outcome; nothing escapes
// as an error. Once a session has been created, cleanup (session deletion
// plus agent stop) runs exactly once before this returns, on every exit
// path.
func (o *Orchestrator) ExecuteTaskWithProfile(ctx context.Context, req TaskRequest) *TaskOutcome {
	out := &TaskOutcome{}

	if req.ProfileName == "" {
		out.Error = "profile_name is required"
		return out
	}
	if req.Task == "" {
		out.Error = "task is required"
		return out
	}

	// Checked before any session exists so a misconfigured deployment
	// never creates billable resources it cannot use.
	if o.llmAPIKey == "" {
		out.Error = "LLM API key is not configured"
		return out
	}

	sess, err := o.provisioner.CreateSession(ctx, browser.SessionOptions{
		Profile: &browser.ProfileRef{Name: req.ProfileName, SaveChanges: false},
		Stealth: true,
	})
	if err != nil {
		out.Error = fmt.Sprintf("failed to create session: %v", err)
		return out
	}
	out.SessionID = sess.ID

	var handle agent.Handle
	defer func() {
		o.cleanup(sess.ID, handle)
	}()

	handle, err = o.launcher.Start(ctx, agent.Config{
		ControlURL: sess.ControlURL,
		StartURL:   req.StartURL,
		APIKey:     o.llmAPIKey,
		Model:      o.llmModel,
		Viewport:   o.viewport,
	})
	if err != nil {
		out.Error = fmt.Sprintf("failed to start agent: %v", err)
		return out
	}

	result, err := handle.Act(ctx, req.Task)
	if err != nil {
		out.Error = fmt.Sprintf("task execution failed: %v", err)
		return out
	}
	out.TaskResult = result

	if req.ExtractInstructions != "" {
		data, err := handle.Extract(ctx, req.ExtractInstructions, agent.OpenSchema())
		if err != nil {
			// The task itself already succeeded; a failed extraction
			// is reported alongside, never instead of, that success.
			o.log.Warnf("extraction failed for session %s: %v", sess.ID, err)
			out.ExtractionError = err.Error()
		} else {
			out.ExtractedData = data
		}
	}

	out.Success = true
	return out
}

// cleanup tears down the agent and session after a task run. Failures are
// logged and never surfaced: the operation's result is already decided by
// the time cleanup runs.
func (o *Orchestrator) cleanup(sessionID string, handle agent.Handle) {
	if handle != nil {
		if err := handle.Stop(); err != nil {
			o.log.Warnf("failed to stop agent for session %s: %v", sessionID, err)
		}
	}

	// Deletion uses a fresh context so cleanup still runs when the
	// operation's context is already canceled.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := o.provisioner.DeleteSession(ctx, sessionID); err != nil {
		o.log.Errorf("failed to delete session %s during cleanup: %v", sessionID, err)
	}
}

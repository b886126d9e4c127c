package orchestrator

import "github.com/onkernel/profiles-demo/pkg/agent"

// CreateProfileBrowserResult is returned by CreateProfileBrowser.
type CreateProfileBrowserResult struct {
	BrowserLiveViewURL string `json:"browser_live_view_url"`
	ProfileName        string `json:"profile_name"`
	SessionID          string `json:"session_id"`
}

// EndSessionResult is returned by EndSessionAndSaveProfile.
type EndSessionResult struct {
	Success bool `json:"success"`
}

// TaskRequest is the caller-supplied input for ExecuteTaskWithProfile.
type TaskRequest struct {
	// ProfileName names the profile the session binds to. Required.
	ProfileName string `json:"profile_name"`

	// Task is the natural-language instruction. Required.
	Task string `json:"task"`

	// StartURL, if set, is loaded before the task begins.
	StartURL string `json:"start_url,omitempty"`

	// ExtractInstructions, if set, triggers structured extraction after
	// the task completes.
	ExtractInstructions string `json:"extract_instructions,omitempty"`
}

// TaskOutcome is the structured result of ExecuteTaskWithProfile. A false
// Success carries a human-readable Error; extraction failure is reported
// through ExtractionError without downgrading Success.
//
// ExtractedData nil with an empty ExtractionError means extraction was not
// requested; nil with a non-empty ExtractionError means it was requested
// and failed.
type TaskOutcome struct {
	Success         bool           `json:"success"`
	TaskResult      *agent.Result  `json:"task_result,omitempty"`
	ExtractedData   map[string]any `json:"extracted_data,omitempty"`
	ExtractionError string         `json:"extraction_error,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	Error           string         `json:"error,omitempty"`
}

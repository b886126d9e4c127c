// Package remote implements the browser.Provisioner contract against a
// hosted provisioning API speaking JSON over HTTP:
//
//	POST   /v1/profiles        — create a named profile (409 on conflict)
//	POST   /v1/sessions        — launch a session
//	DELETE /v1/sessions/{id}   — terminate a session
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/onkernel/profiles-demo/pkg/browser"
)

// Client is an HTTP client for a hosted browser provisioning service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a provisioning client. baseURL is the API root without
// a trailing slash; apiKey may be empty for unauthenticated deployments.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createProfileRequest struct {
	Name string `json:"name"`
}

type createSessionRequest struct {
	Profile *browser.ProfileRef `json:"profile,omitempty"`
	Stealth bool                `json:"stealth"`
}

type apiError struct {
	Error string `json:"error"`
}

// CreateProfile creates a named profile. An HTTP 409 maps to
// browser.ConflictError.
func (c *Client) CreateProfile(ctx context.Context, name string) (*browser.Profile, error) {
	var profile browser.Profile
	err := c.do(ctx, http.MethodPost, "/v1/profiles", createProfileRequest{Name: name}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateSession launches a browser session.
func (c *Client) CreateSession(ctx context.Context, opts browser.SessionOptions) (*browser.Session, error) {
	var session browser.Session
	err := c.do(ctx, http.MethodPost, "/v1/sessions", createSessionRequest{
		Profile: opts.Profile,
		Stealth: opts.Stealth,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession terminates a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	return c.do(ctx, http.MethodDelete, "/v1/sessions/"+sessionID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provisioning request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		var conflicted createProfileRequest
		if body != nil {
			if req, ok := body.(createProfileRequest); ok {
				conflicted = req
			}
		}
		return &browser.ConflictError{Name: conflicted.Name}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provisioning service returned %d: %s", resp.StatusCode, readError(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// readError pulls a service error message out of a failed response body,
// falling back to the raw body when it is not the expected JSON shape.
func readError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}

	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(data))
}

// Package openai implements the agent contract with an OpenAI
// tool-calling loop driving a browser session over its CDP control
// channel. The model is given a small set of page tools (navigate, click,
// fill, read_page) plus a completion tool it calls when the task is done.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/playwright-community/playwright-go"

	"github.com/onkernel/profiles-demo/pkg/agent"
	"github.com/onkernel/profiles-demo/pkg/logging"
)

const defaultModel = "gpt-4o"

// Launcher starts OpenAI-driven agents.
type Launcher struct {
	baseURL string
	log     *logging.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithBaseURL points the launcher at an OpenAI-compatible API.
func WithBaseURL(baseURL string) Option {
	return func(l *Launcher) {
		l.baseURL = baseURL
	}
}

// NewLauncher creates a Launcher.
func NewLauncher(log *logging.Logger, opts ...Option) *Launcher {
	l := &Launcher{log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start connects to the session's CDP endpoint and prepares the agent. If
// cfg.StartURL is set, the page navigates there before the first task.
func (l *Launcher) Start(ctx context.Context, cfg agent.Config) (agent.Handle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if cfg.ControlURL == "" {
		return nil, fmt.Errorf("control URL is required")
	}

	pw, err := playwright.Run(&playwright.RunOptions{Verbose: false})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	br, err := pw.Chromium.ConnectOverCDP(cfg.ControlURL)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := attachPage(br, cfg.Viewport)
	if err != nil {
		br.Close()
		pw.Stop()
		return nil, err
	}

	if cfg.StartURL != "" {
		if _, err := page.Goto(cfg.StartURL); err != nil {
			br.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to open start url: %w", err)
		}
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if l.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(l.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &handle{
		client:  client,
		model:   model,
		driver:  &playwrightDriver{page: page},
		pw:      pw,
		browser: br,
		log:     l.log,
	}, nil
}

// attachPage picks up the remote browser's existing page, creating one if
// the session has none, and pins the viewport.
func attachPage(br playwright.Browser, vp agent.Viewport) (playwright.Page, error) {
	contexts := br.Contexts()
	if len(contexts) == 0 {
		return nil, fmt.Errorf("remote browser has no contexts")
	}

	var page playwright.Page
	if pages := contexts[0].Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		var err error
		page, err = contexts[0].NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
	}

	if vp.Width > 0 && vp.Height > 0 {
		if err := page.SetViewportSize(vp.Width, vp.Height); err != nil {
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	return page, nil
}

// handle is a started agent bound to one session.
type handle struct {
	client  openai.Client
	model   string
	driver  pageDriver
	pw      *playwright.Playwright
	browser playwright.Browser
	log     *logging.Logger
}

// Stop disconnects from the browser. Disconnecting never kills the remote
// session; the provisioning service owns session lifetime.
func (h *handle) Stop() error {
	var firstErr error
	if h.browser != nil {
		if err := h.browser.Close(); err != nil {
			firstErr = fmt.Errorf("failed to disconnect browser: %w", err)
		}
	}
	if h.pw != nil {
		if err := h.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return firstErr
}

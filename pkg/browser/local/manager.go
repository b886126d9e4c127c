// Package local implements the browser.Provisioner contract on the local
// machine: playwright-launched Chromium with persistent user-data
// directories standing in for hosted profiles, plus a websocket proxy
// providing the live view. The stealth flag is accepted and ignored; there
// is no proxying or challenge solving to delegate to locally.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/semaphore"

	"github.com/onkernel/profiles-demo/pkg/browser"
	"github.com/onkernel/profiles-demo/pkg/config"
	"github.com/onkernel/profiles-demo/pkg/logging"
)

// Manager provisions browser sessions on the local machine.
type Manager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	sessions    map[string]*localSession
	store       *profileStore
	liveView    *liveViewServer
	sem         *semaphore.Weighted
	scratchRoot string
	headless    bool
	log         *logging.Logger
	initialized bool
}

type localSession struct {
	id          string
	browserCtx  playwright.BrowserContext
	userDataDir string
	scratch     bool // userDataDir is a throwaway copy, removed on delete
	controlURL  string
}

// NewManager creates a local provisioner from configuration. Call
// Initialize before use.
func NewManager(cfg config.Local, log *logging.Logger) (*Manager, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data dir: %w", err)
		}
		dataDir = filepath.Join(home, ".profiles-demo")
	}

	store, err := newProfileStore(filepath.Join(dataDir, "profiles"))
	if err != nil {
		return nil, err
	}

	scratchRoot := filepath.Join(dataDir, "scratch")
	if err := os.MkdirAll(scratchRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	return &Manager{
		sessions:    make(map[string]*localSession),
		store:       store,
		liveView:    newLiveViewServer(cfg.LiveViewAddr, log),
		sem:         semaphore.NewWeighted(int64(cfg.MaxSessions)),
		scratchRoot: scratchRoot,
		headless:    cfg.Headless,
		log:         log,
	}, nil
}

// Initialize installs and starts playwright and the live view server.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	if err := m.liveView.Start(); err != nil {
		pw.Stop()
		return err
	}

	m.pw = pw
	m.initialized = true
	return nil
}

// CreateProfile creates a named profile backed by an empty user-data
// directory.
func (m *Manager) CreateProfile(ctx context.Context, name string) (*browser.Profile, error) {
	return m.store.Create(name)
}

// CreateSession launches a Chromium persistent context. Sessions with
// SaveChanges run directly on the profile's user-data directory so closing
// them commits state; sessions without run on a scratch copy that is
// discarded on delete.
func (m *Manager) CreateSession(ctx context.Context, opts browser.SessionOptions) (*browser.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("manager not initialized")
	}

	if !m.sem.TryAcquire(1) {
		return nil, fmt.Errorf("session limit reached")
	}

	sess, err := m.createSessionLocked(ctx, opts)
	if err != nil {
		m.sem.Release(1)
		return nil, err
	}
	return sess, nil
}

func (m *Manager) createSessionLocked(ctx context.Context, opts browser.SessionOptions) (*browser.Session, error) {
	id := uuid.New().String()

	userDataDir, scratch, err := m.resolveUserDataDir(id, opts.Profile)
	if err != nil {
		return nil, err
	}

	cdpPort, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to pick CDP port: %w", err)
	}

	browserCtx, err := m.pw.Chromium.LaunchPersistentContext(userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(m.headless),
			Args:     []string{fmt.Sprintf("--remote-debugging-port=%d", cdpPort)},
			Viewport: &playwright.Size{Width: 1280, Height: 720},
		})
	if err != nil {
		if scratch {
			os.RemoveAll(userDataDir)
		}
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	cdpWSURL, err := waitForCDP(ctx, cdpPort)
	if err != nil {
		browserCtx.Close()
		if scratch {
			os.RemoveAll(userDataDir)
		}
		return nil, fmt.Errorf("browser CDP endpoint not ready: %w", err)
	}

	m.liveView.Register(id, cdpWSURL)
	m.sessions[id] = &localSession{
		id:          id,
		browserCtx:  browserCtx,
		userDataDir: userDataDir,
		scratch:     scratch,
		controlURL:  cdpWSURL,
	}

	m.log.Infof("launched local session %s (scratch=%v, dir=%s)", id, scratch, userDataDir)

	return &browser.Session{
		ID:          id,
		LiveViewURL: m.liveView.ViewURL(id),
		ControlURL:  cdpWSURL,
	}, nil
}

func (m *Manager) resolveUserDataDir(sessionID string, profile *browser.ProfileRef) (dir string, scratch bool, err error) {
	if profile == nil {
		dir = filepath.Join(m.scratchRoot, sessionID)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", false, fmt.Errorf("failed to create session dir: %w", err)
		}
		return dir, true, nil
	}

	if !m.store.Exists(profile.Name) {
		return "", false, fmt.Errorf("profile %q not found", profile.Name)
	}

	if profile.SaveChanges {
		return m.store.dir(profile.Name), false, nil
	}

	// Run on a copy so the profile is never mutated.
	dir = filepath.Join(m.scratchRoot, sessionID)
	if err := m.store.CopyTo(profile.Name, dir); err != nil {
		return "", false, fmt.Errorf("failed to copy profile: %w", err)
	}
	return dir, true, nil
}

// DeleteSession closes the session's browser context. For save-changes
// sessions the persistent context directory is the profile itself, so
// closing commits state; scratch directories are removed.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q not found", sessionID)
	}

	m.liveView.Unregister(sessionID)

	err := sess.browserCtx.Close()
	if sess.scratch {
		if rmErr := os.RemoveAll(sess.userDataDir); rmErr != nil {
			m.log.Warnf("failed to remove scratch dir for %s: %v", sessionID, rmErr)
		}
	}
	m.sem.Release(1)

	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// Shutdown closes every open session and stops playwright and the live
// view server.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.DeleteSession(context.Background(), id); err != nil {
			m.log.Warnf("failed to delete session %s during shutdown: %v", id, err)
		}
	}

	if err := m.liveView.Stop(); err != nil {
		m.log.Warnf("failed to stop live view server: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized && m.pw != nil {
		m.initialized = false
		if err := m.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}

// freePort asks the kernel for an unused TCP port.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// waitForCDP polls Chrome's debugging endpoint until it reports its
// websocket URL.
func waitForCDP(ctx context.Context, port int) (string, error) {
	versionURL := fmt.Sprintf("http://127.0.0.1:%d/json/version", port)
	deadline := time.Now().Add(15 * time.Second)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		wsURL, err := fetchDebuggerURL(ctx, versionURL)
		if err == nil && wsURL != "" {
			return wsURL, nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return "", fmt.Errorf("timed out waiting for CDP on port %d", port)
}

func fetchDebuggerURL(ctx context.Context, versionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", err
	}
	return version.WebSocketDebuggerURL, nil
}

package local

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/onkernel/profiles-demo/pkg/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveViewServer proxies DevTools websocket traffic so a human (or the
// DevTools frontend) can watch and drive a local session. One server
// handles every session; targets are registered per session id.
type liveViewServer struct {
	addr    string
	mu      sync.RWMutex
	targets map[string]string // session id -> chrome CDP websocket URL
	srv     *http.Server
	ln      net.Listener
	log     *logging.Logger
}

func newLiveViewServer(addr string, log *logging.Logger) *liveViewServer {
	return &liveViewServer{
		addr:    addr,
		targets: make(map[string]string),
		log:     log,
	}
}

// Start begins listening. Must be called before URLs are handed out.
func (s *liveViewServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("live view listen failed: %w", err)
	}
	s.ln = ln

	r := mux.NewRouter()
	r.HandleFunc("/sessions/{id}/ws", s.handleSession).Methods("GET")

	s.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("live view server stopped: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *liveViewServer) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Register maps a session id to its Chrome CDP websocket endpoint.
func (s *liveViewServer) Register(sessionID, cdpWSURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[sessionID] = cdpWSURL
}

// Unregister removes a session's target.
func (s *liveViewServer) Unregister(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, sessionID)
}

// Addr returns the bound listen address, useful when addr was ":0".
func (s *liveViewServer) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// ViewURL returns the URL a human opens to inspect the session through the
// hosted DevTools frontend, wired to this proxy.
func (s *liveViewServer) ViewURL(sessionID string) string {
	return fmt.Sprintf("https://chrome-devtools-frontend.appspot.com/serve_rev/@latest/inspector.html?ws=%s/sessions/%s/ws", s.Addr(), sessionID)
}

// ProxyURL returns the raw websocket endpoint for the session.
func (s *liveViewServer) ProxyURL(sessionID string) string {
	return fmt.Sprintf("ws://%s/sessions/%s/ws", s.Addr(), sessionID)
}

func (s *liveViewServer) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	s.mu.RLock()
	target, ok := s.targets[sessionID]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	clientConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("live view upgrade failed for %s: %v", sessionID, err)
		return
	}
	defer clientConn.Close()

	dialCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chromeConn, _, err := websocket.DefaultDialer.DialContext(dialCtx, target, nil)
	if err != nil {
		s.log.Errorf("live view dial to chrome failed for %s: %v", sessionID, err)
		_ = clientConn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("error connecting: %v", err)))
		return
	}
	defer chromeConn.Close()

	s.log.Infof("live view client connected to session %s", sessionID)

	errCh := make(chan error, 2)
	go func() { errCh <- proxyMessages(clientConn, chromeConn) }()
	go func() { errCh <- proxyMessages(chromeConn, clientConn) }()

	if err := <-errCh; err != nil && err != io.EOF {
		s.log.Debugf("live view proxy for %s closed: %v", sessionID, err)
	}
}

// proxyMessages copies websocket messages from src to dst until either
// side closes.
func proxyMessages(src, dst *websocket.Conn) error {
	for {
		msgType, data, err := src.ReadMessage()
		if err != nil {
			return err
		}
		if err := dst.WriteMessage(msgType, data); err != nil {
			return err
		}
	}
}

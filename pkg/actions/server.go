package actions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/onkernel/profiles-demo/pkg/logging"
)

// Server exposes the action registry over HTTP:
//
//	GET  /actions          — payload schemas for every action
//	POST /actions/{name}   — dispatch one action with a JSON payload
type Server struct {
	registry *Registry
	log      *logging.Logger
}

// NewServer creates an HTTP server over the registry.
func NewServer(registry *Registry, log *logging.Logger) *Server {
	return &Server{registry: registry, log: log}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/actions", s.handleSchemas).Methods("GET")
	r.HandleFunc("/actions/{name}", s.handleDispatch).Methods("POST")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	return r
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Schemas())
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read request body"))
		return
	}

	s.log.Infof("dispatching action %s", name)

	result, err := s.registry.Dispatch(r.Context(), name, body)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown action") {
			status = http.StatusNotFound
		} else if strings.Contains(err.Error(), "invalid payload") {
			status = http.StatusBadRequest
		}
		s.log.Errorf("action %s failed: %v", name, err)
		writeJSON(w, status, errorBody(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func errorBody(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

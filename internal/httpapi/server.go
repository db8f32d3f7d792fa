// Package httpapi exposes the session engine over HTTP. Routing and
// JSON plumbing only; all session semantics live in the engine.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/platekit/cooksession/internal/engine"
	"github.com/platekit/cooksession/internal/logger"
)

// Server wraps the engine behind an HTTP mux.
type Server struct {
	engine *engine.Engine
	log    *logger.Logger
	http   *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, eng *engine.Engine, log *logger.Logger) *Server {
	s := &Server{engine: eng, log: log}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           withRequestID(withAccessLog(log, s.routes())),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleStart)
	mux.HandleFunc("GET /sessions/{id}", s.handleGet)
	mux.HandleFunc("POST /sessions/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /sessions/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /sessions/{id}/next", s.handleNext)
	mux.HandleFunc("POST /sessions/{id}/cancel", s.handleCancel)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Handler returns the fully wrapped HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("http listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

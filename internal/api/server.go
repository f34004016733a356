// Package api serves the session results as a read-only JSON API for an
// external presentation layer.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pable/go-football-metrics/internal/session"
)

// SessionSource yields the current session, held open until release is
// called. *session.Cache satisfies it.
type SessionSource interface {
	Acquire() (s *session.Session, release func(), err error)
}

// Server is the HTTP API server.
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer wires the routes onto addr.
func NewServer(addr string, sessions SessionSource, finalThirdX float64, log *logrus.Logger) *Server {
	handler := NewHandler(sessions, finalThirdX, log)
	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the route table around h.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.Use(h.RecoveryMiddleware)
	router.Use(h.LoggingMiddleware)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Matches. The resolve route is registered before {matchID} so it is not
	// swallowed by the variable.
	api.HandleFunc("/matches", h.GetMatches).Methods("GET")
	api.HandleFunc("/matches/resolve", h.ResolveMatch).Methods("GET")
	api.HandleFunc("/matches/{matchID:[0-9]+}/players", h.GetMatchPlayers).Methods("GET")
	api.HandleFunc("/matches/{matchID:[0-9]+}/passes", h.GetMatchPasses).Methods("GET")

	// Players
	api.HandleFunc("/per90", h.GetPer90).Methods("GET")

	return router
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

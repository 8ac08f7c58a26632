// Package server exposes the subscription management HTTP API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dining_alerts/internal/storage"
)

// Server handles subscribe/unsubscribe requests for dining alerts.
type Server struct {
	store storage.Storage
	// halls is the set of configured hall names, sorted.
	halls []string
	log   *slog.Logger
}

// New creates a Server over the given store and configured halls.
func New(store storage.Storage, halls []string, log *slog.Logger) *Server {
	return &Server{store: store, halls: halls, log: log}
}

// Router builds the chi router. metricsHandler, when non-nil, is
// mounted at /metrics.
func (s *Server) Router(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/subscribe", s.handleSubscribe)
	r.Post("/unsubscribe", s.handleUnsubscribe)
	r.Get("/halls", s.handleHalls)
	r.Get("/healthz", s.handleHealthz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHalls(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"halls": s.halls})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, ErrCodeNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, ErrCodeMethodNotAllowed, r.Method+" is not supported here")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/network", func(r chi.Router) {
			r.Get("/status", s.handleNetworkStatus)
			r.Get("/history", s.handleNetworkHistory)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth reports liveness plus the state of optional components.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"ready":   s.tracker.Snapshot().Ready(),
	}
	if s.mqtt != nil {
		resp["mqtt_connected"] = s.mqtt.HealthCheck(r.Context()) == nil
	}
	if s.db != nil {
		resp["database_ok"] = s.db.HealthCheck(r.Context()) == nil
	}
	writeJSON(w, http.StatusOK, resp)
}

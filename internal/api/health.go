package api

import (
	"net/http"
	"time"

	"prio/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Storage   string    `json:"storage,omitempty"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}

	status := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Storage = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Storage = "ok"
		}
	}

	WriteJSON(w, resp, status)
}

// handleRoot handles GET / with basic service information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFound(w, "unknown endpoint "+r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"service": "prio",
		"version": version.Version,
		"endpoints": []string{
			"GET  /health",
			"GET  /policies",
			"GET  /runs/{repo_id}",
			"POST /prioritize",
			"POST /compare-heuristics",
		},
	}, http.StatusOK)
}

package handlers

import (
	"net/http"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadyChecker reports whether a dependency can serve requests
type ReadyChecker interface {
	Ready() bool
}

// ReadyFunc adapts a func to ReadyChecker
type ReadyFunc func() bool

func (f ReadyFunc) Ready() bool { return f() }

// HealthCheck handles health check requests
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// ReadinessCheck returns a handler that reports ready only when every
// checker is ready
func ReadinessCheck(checkers ...ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checkers {
			if c == nil || !c.Ready() {
				writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "not ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
	}
}

package handler

import (
	"net/http"
)

// ReadinessChecker reports whether transactions are being consumed.
type ReadinessChecker interface {
	Running() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	consumer ReadinessChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(consumer ReadinessChecker) *HealthHandler {
	return &HealthHandler{consumer: consumer}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 while the pipeline consumer is running.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if !h.consumer.Running() {
		writeError(w, http.StatusServiceUnavailable, "pipeline not running", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"pipeline": "ok",
	})
}

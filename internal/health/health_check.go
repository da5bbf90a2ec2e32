// Package health provides liveness and readiness endpoints for the gateway.
package health

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
)

// HealthCheck manages health check functionality.
type HealthCheck struct {
	router *service.RouterService
	logger *zap.Logger
}

// NewHealthCheck creates a new HealthCheck instance.
func NewHealthCheck(router *service.RouterService, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		router: router,
		logger: logger,
	}
}

// LivenessResponse represents the response for the liveness check.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the response for the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler handles GET /health requests.
// Returns 200 OK if the process is running.
func (hc *HealthCheck) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{Status: "healthy"})
}

// ReadinessHandler handles GET /ready requests.
// The cluster is ready once at least one shard with ring capacity exists.
func (hc *HealthCheck) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"shards": "ok",
		"ring":   "ok",
	}
	status := http.StatusOK
	overall := "ready"

	if hc.router.ShardCount() == 0 {
		checks["shards"] = "no shards registered"
		status = http.StatusServiceUnavailable
		overall = "not_ready"
	}
	if hc.router.VirtualNodeCount() == 0 {
		checks["ring"] = "ring has no virtual nodes"
		status = http.StatusServiceUnavailable
		overall = "not_ready"
	}

	writeJSON(w, status, ReadinessResponse{Status: overall, Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

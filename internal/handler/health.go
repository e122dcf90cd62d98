package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redesocial/engine/internal/httputil"
)

// BackendCheck probes one dependency of a service.
type BackendCheck func(ctx context.Context) error

// HealthHandler reports service liveness and per-backend status.
type HealthHandler struct {
	serviceName string
	checks      map[string]BackendCheck
}

func NewHealthHandler(serviceName string, checks map[string]BackendCheck) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, checks: checks}
}

// Health handles GET /health. The service reports degraded when any backend
// check fails, but still answers 200 so orchestrators keep it running.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	backends := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			backends[name] = "unavailable"
			status = "degraded"
			continue
		}
		backends[name] = "connected"
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"service":  h.serviceName,
		"backends": backends,
	})
}

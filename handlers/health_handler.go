package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/services/fallback"
	"github.com/upb/unified-ai-gateway/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
}

// RootResponse is the basic API info served at the root path
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Health  string `json:"health"`
}

// HealthChecker probes the configured providers
type HealthChecker interface {
	Health(ctx context.Context) map[string]bool
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	checker HealthChecker
	title   string
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(checker HealthChecker, title, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		title:   title,
		version: version,
		logger:  logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, RootResponse{
		Name:    h.title,
		Version: h.version,
		Health:  "/health",
	})
}

// HandleHealth handles GET /health
// Probes every configured provider concurrently and renders the per-provider
// map with the aggregate status. The endpoint itself always answers 200; the
// status field reports "degraded" when no provider is healthy.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.checker.Health(r.Context())
	status := fallback.Status(health)

	if status != "healthy" {
		h.logger.Warn("no healthy providers", zap.Any("providers", health))
	}

	response := HealthResponse{
		Status:    status,
		Providers: health,
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write health response", zap.Error(err))
	}
}

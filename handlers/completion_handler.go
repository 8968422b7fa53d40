package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/middleware"
	"github.com/upb/unified-ai-gateway/services/completion"
	"github.com/upb/unified-ai-gateway/utils"
)

// CompletionService defines the completion operations the handler needs
type CompletionService interface {
	Complete(ctx context.Context, req *completion.Request) (*completion.Response, error)
}

// CompletionHandler handles completion HTTP requests
type CompletionHandler struct {
	service CompletionService
	logger  *zap.Logger
}

// NewCompletionHandler creates a new CompletionHandler
func NewCompletionHandler(service CompletionService, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{
		service: service,
		logger:  logger,
	}
}

// HandleComplete handles POST /api/v1/completion
func (h *CompletionHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req completion.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	h.logger.Debug("processing completion",
		zap.String("request_id", requestID),
		zap.String("product", req.Product),
		zap.String("session_id", req.SessionID))

	result, err := h.service.Complete(ctx, &req)
	if err != nil {
		h.logger.Error("completion failed",
			zap.String("request_id", requestID),
			zap.String("product", req.Product),
			zap.Error(err))
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("completion successful",
		zap.String("request_id", requestID),
		zap.String("product", result.Product),
		zap.String("provider", result.Provider),
		zap.Bool("fallback_used", result.FallbackUsed),
		zap.Float64("latency_ms", result.LatencyMs),
		zap.Float64("cost_usd", result.CostUSD))

	if err := utils.WriteOK(w, result); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

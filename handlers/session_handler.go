package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/middleware"
	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/utils"
)

// SessionService defines the session operations the handler needs
type SessionService interface {
	GetSession(ctx context.Context, sessionID string, product models.Product) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string, product models.Product) error
}

// SessionHandler handles session HTTP requests
type SessionHandler struct {
	service SessionService
	logger  *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGetSession handles GET /api/v1/session/{product}/{session_id}
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	product := models.Product(chi.URLParam(r, "product"))
	sessionID := chi.URLParam(r, "session_id")

	session, err := h.service.GetSession(ctx, sessionID, product)
	if err != nil {
		h.logger.Debug("session lookup failed",
			zap.String("request_id", requestID),
			zap.String("session_id", sessionID),
			zap.String("product", string(product)),
			zap.Error(err))
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, session); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// HandleDeleteSession handles DELETE /api/v1/session/{product}/{session_id}
func (h *SessionHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	product := models.Product(chi.URLParam(r, "product"))
	sessionID := chi.URLParam(r, "session_id")

	if err := h.service.DeleteSession(ctx, sessionID, product); err != nil {
		h.logger.Debug("session delete failed",
			zap.String("request_id", requestID),
			zap.String("session_id", sessionID),
			zap.String("product", string(product)),
			zap.Error(err))
		HandleServiceError(w, r, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

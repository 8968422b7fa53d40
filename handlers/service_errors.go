package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/middleware"
	"github.com/upb/unified-ai-gateway/services"
	"github.com/upb/unified-ai-gateway/services/fallback"
	"github.com/upb/unified-ai-gateway/utils"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	// Chain exhaustion gets its own mapping: the request was valid but no
	// backend could serve it right now.
	var allFailed *fallback.AllProvidersFailedError
	if errors.As(err, &allFailed) {
		attemptDetails := make([]map[string]interface{}, 0, len(allFailed.Attempts))
		for _, a := range allFailed.Attempts {
			attemptDetails = append(attemptDetails, map[string]interface{}{
				"provider":   a.Provider,
				"error":      a.Error,
				"latency_ms": a.LatencyMs,
			})
		}
		failureDetails := map[string]interface{}{
			"attempts": attemptDetails,
		}
		if requestID := middleware.GetRequestIDFromContext(r.Context()); requestID != "" {
			failureDetails["request_id"] = requestID
		}
		if werr := utils.WriteServiceUnavailable(w, "All LLM providers failed", failureDetails); werr != nil {
			logger.Error("failed to write service unavailable response", zap.Error(werr))
		}
		return
	}

	switch {
	case services.IsNotFoundError(err):
		if werr := utils.WriteNotFound(w, err.Error()); werr != nil {
			logger.Error("failed to write not found response", zap.Error(werr))
		}

	case services.IsValidationError(err):
		if werr := utils.WriteBadRequest(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad request response", zap.Error(werr))
		}

	case services.IsUnauthorizedError(err):
		if werr := utils.WriteUnauthorized(w, err.Error()); werr != nil {
			logger.Error("failed to write unauthorized response", zap.Error(werr))
		}

	case services.IsExternalError(err):
		if werr := utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse{
			Error:   "bad_gateway",
			Message: err.Error(),
			Details: details,
		}); werr != nil {
			logger.Error("failed to write bad gateway response", zap.Error(werr))
		}

	case services.IsInternalError(err):
		// Log internal errors but return a generic message
		logger.Error("internal server error", zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "An internal error occurred"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if werr := utils.WriteInternalServerError(w, "An unexpected error occurred"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		if werr := utils.WriteBadRequest(w, "Validation failed", details); werr != nil {
			logger.Error("failed to write validation error response", zap.Error(werr))
		}
		return
	}

	if werr := utils.WriteBadRequest(w, err.Error(), nil); werr != nil {
		logger.Error("failed to write validation error response", zap.Error(werr))
	}
}

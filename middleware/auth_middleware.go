package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/utils"
)

// apiKeyHeader is the header clients authenticate with
const apiKeyHeader = "X-API-Key"

// AuthMiddleware guards the API with a shared key. An empty configured key
// disables the check, which is the local development default.
type AuthMiddleware struct {
	apiKey string
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(apiKey string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		apiKey: apiKey,
		logger: logger,
	}
}

// RequireAPIKey is a middleware that requires a valid X-API-Key header
func (m *AuthMiddleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		requestID := GetRequestIDFromContext(r.Context())

		provided := r.Header.Get(apiKeyHeader)
		if provided == "" {
			m.logger.Warn("missing API key",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
			m.logger.Warn("invalid API key",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

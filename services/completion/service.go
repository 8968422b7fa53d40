package completion

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/repositories"
	"github.com/upb/unified-ai-gateway/services"
	"github.com/upb/unified-ai-gateway/services/fallback"
	"github.com/upb/unified-ai-gateway/services/products"
)

// Request is a product-scoped completion request. SessionID may be empty,
// in which case a fresh session is created with a generated identifier.
type Request struct {
	SessionID   string   `json:"session_id" validate:"omitempty,min=1,max=128"`
	Product     string   `json:"product" validate:"required"`
	Message     string   `json:"message" validate:"required,min=1,max=100000"`
	MaxTokens   int      `json:"max_tokens,omitempty" validate:"omitempty,gte=1,lte=4000"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// Response is the outcome of a successful completion, including which
// provider served it and the full fallback attempt history.
type Response struct {
	SessionID    string             `json:"session_id"`
	Product      string             `json:"product"`
	Response     string             `json:"response"`
	Provider     string             `json:"provider"`
	Model        string             `json:"model"`
	InputTokens  int                `json:"input_tokens"`
	OutputTokens int                `json:"output_tokens"`
	CostUSD      float64            `json:"cost_usd"`
	LatencyMs    float64            `json:"latency_ms"`
	FallbackUsed bool               `json:"fallback_used"`
	Attempts     []fallback.Attempt `json:"attempts"`
	MessageCount int                `json:"message_count"`
}

// Service orchestrates completions: it resolves the product configuration,
// maintains the per-session conversation, and delegates generation to the
// provider fallback chain.
type Service struct {
	chain    *fallback.Chain
	sessions repositories.SessionRepository
	logger   *zap.Logger
}

// NewService creates a completion service.
func NewService(chain *fallback.Chain, sessions repositories.SessionRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chain:    chain,
		sessions: sessions,
		logger:   logger,
	}
}

// Complete runs one conversation turn. The session is loaded (or created
// and seeded with the product's system prompt), the user message appended,
// and the chain invoked with the full history. The session is persisted
// only after a successful completion, so a failed turn leaves no trace.
func (s *Service) Complete(ctx context.Context, req *Request) (*Response, error) {
	product := models.Product(req.Product)
	cfg, ok := products.Get(product)
	if !ok {
		return nil, services.NewInvalidProductError(req.Product)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := s.sessions.Get(ctx, sessionID, product)
	if err != nil {
		return nil, services.WrapInternal("failed to load session", err)
	}
	if session == nil {
		session = models.NewSession(sessionID, product,
			models.Message{Role: "system", Content: cfg.SystemPrompt})
	}

	session.AddMessage(models.Message{Role: "user", Content: req.Message})

	maxTokens := cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	outcome, err := s.chain.Complete(ctx, session.Messages, maxTokens, temperature)
	if err != nil {
		return nil, err
	}

	session.AddMessage(models.Message{Role: "assistant", Content: outcome.Result.Content})

	if err := s.sessions.Save(ctx, session); err != nil {
		// The completion already happened and was paid for; return it and
		// surface the persistence failure in the logs only.
		s.logger.Error("failed to persist session after completion",
			zap.String("session_id", sessionID),
			zap.String("product", string(product)),
			zap.Error(err))
	}

	s.logger.Info("completion served",
		zap.String("session_id", sessionID),
		zap.String("product", string(product)),
		zap.String("provider", outcome.Result.Provider),
		zap.Int("attempts", len(outcome.Attempts)),
		zap.Float64("cost_usd", outcome.Result.CostUSD))

	return &Response{
		SessionID:    sessionID,
		Product:      string(product),
		Response:     outcome.Result.Content,
		Provider:     outcome.Result.Provider,
		Model:        outcome.Result.Model,
		InputTokens:  outcome.Result.InputTokens,
		OutputTokens: outcome.Result.OutputTokens,
		CostUSD:      outcome.Result.CostUSD,
		LatencyMs:    outcome.Result.LatencyMs,
		FallbackUsed: outcome.FallbackUsed(),
		Attempts:     outcome.Attempts,
		MessageCount: session.MessageCount(),
	}, nil
}

// GetSession returns a session's full state, or a not-found domain error.
func (s *Service) GetSession(ctx context.Context, sessionID string, product models.Product) (*models.Session, error) {
	if !product.Valid() {
		return nil, services.NewInvalidProductError(string(product))
	}

	session, err := s.sessions.Get(ctx, sessionID, product)
	if err != nil {
		return nil, services.WrapInternal("failed to load session", err)
	}
	if session == nil {
		return nil, services.ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession removes a session. Deleting an absent session returns a
// not-found domain error so callers can distinguish the two cases.
func (s *Service) DeleteSession(ctx context.Context, sessionID string, product models.Product) error {
	if !product.Valid() {
		return services.NewInvalidProductError(string(product))
	}

	deleted, err := s.sessions.Delete(ctx, sessionID, product)
	if err != nil {
		return services.WrapInternal("failed to delete session", err)
	}
	if !deleted {
		return services.ErrSessionNotFound
	}

	s.logger.Info("session deleted",
		zap.String("session_id", sessionID),
		zap.String("product", string(product)))
	return nil
}

// Health probes every provider in the chain concurrently and returns the
// per-provider health map.
func (s *Service) Health(ctx context.Context) map[string]bool {
	return s.chain.HealthCheck(ctx)
}

// Providers returns the configured provider names in fallback order.
func (s *Service) Providers() []string {
	return s.chain.ProviderNames()
}

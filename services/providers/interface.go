package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/unified-ai-gateway/models"
)

// Provider is the uniform capability exposed by every configured LLM backend:
// attempt a completion, probe health, estimate cost. Implementations wrap a
// vendor SDK or raw HTTP API and normalize failures into *ProviderError.
type Provider interface {
	// Name returns the provider name (e.g., "groq", "gemini", "openai", "anthropic")
	Name() string

	// Model returns the model identifier this provider is configured with
	Model() string

	// Complete generates a completion for the given conversation.
	// Any provider-side failure is returned as a *ProviderError with its
	// retryable classification set.
	Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*CompletionResult, error)

	// HealthCheck issues a minimal completion request to verify the provider
	// is reachable. It returns false instead of propagating any failure.
	HealthCheck(ctx context.Context) bool

	// EstimateCost returns the USD cost for the given token counts.
	// Pure function of the provider's static price table; no network access.
	EstimateCost(inputTokens, outputTokens int) float64
}

// CompletionResult is the normalized outcome of a successful completion.
type CompletionResult struct {
	Content      string    `json:"content"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    float64   `json:"latency_ms"`
	CostUSD      float64   `json:"cost_usd"`
	Timestamp    time.Time `json:"timestamp"`
}

// TotalTokens returns the combined input and output token count.
func (r *CompletionResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ProviderError is a classified failure from a single provider.
// Retryable means the same logical request may succeed on a different
// backend (rate limits, connectivity, server-side faults); non-retryable
// means retrying anywhere is futile (auth failures, malformed requests).
type ProviderError struct {
	Provider   string
	Message    string
	StatusCode int // 0 when no HTTP status applies
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error.
func NewProviderError(provider, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// RetryableStatus classifies an HTTP status code: rate limits and
// server-side failures are retryable, other client errors are not.
func RetryableStatus(statusCode int) bool {
	return statusCode == 429 || statusCode >= 500
}

// Pricing holds USD rates per million tokens for one model.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost computes the USD cost for the given token counts.
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*p.InputPerMillion +
		float64(outputTokens)/1_000_000*p.OutputPerMillion
}

// PriceTable maps model identifiers to pricing, with a default row for
// models not present in the table.
type PriceTable struct {
	Models  map[string]Pricing
	Default Pricing
}

// Lookup returns the pricing for a model, falling back to the default rate
// when the model is unknown.
func (t PriceTable) Lookup(model string) Pricing {
	if p, ok := t.Models[model]; ok {
		return p
	}
	return t.Default
}

// HealthProbeMessages is the minimal conversation used by health probes.
var HealthProbeMessages = []models.Message{{Role: "user", Content: "Hi"}}

// HealthProbeMaxTokens bounds the probe completion so probes stay cheap.
const HealthProbeMaxTokens = 5

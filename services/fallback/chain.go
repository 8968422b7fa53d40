package fallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

// DefaultProbeTimeout bounds each provider's health probe independently.
const DefaultProbeTimeout = 10 * time.Second

// Attempt records one provider invocation's outcome. Attempts are
// append-only and ordered by invocation order.
type Attempt struct {
	Provider  string    `json:"provider"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	LatencyMs float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome is the result of a chain completion together with the full
// attempt history.
type Outcome struct {
	Result   *providers.CompletionResult
	Attempts []Attempt
}

// FallbackUsed reports whether more than one provider was tried.
func (o *Outcome) FallbackUsed() bool {
	return len(o.Attempts) > 1
}

// AllProvidersFailedError is returned when the chain is exhausted or a
// fatal error occurred on the last provider. It carries the ordered
// per-provider diagnostics.
type AllProvidersFailedError struct {
	Attempts []Attempt
}

// Error joins every failed attempt's own message so operators can tell
// apart slow, unreachable, and rejecting providers.
func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Error != "" {
			parts = append(parts, a.Error)
		}
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Option configures a Chain.
type Option func(*Chain)

// WithFallbackObserver sets a callback invoked on every failed attempt.
func WithFallbackObserver(fn func(Attempt)) Option {
	return func(c *Chain) { c.onFallback = fn }
}

// WithProbeTimeout overrides the per-probe health check timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Chain) { c.probeTimeout = d }
}

// WithLogger sets the chain's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// Chain tries providers strictly in configured order until one succeeds or
// all are exhausted. The provider list is immutable after construction, so
// concurrent Complete and HealthCheck calls need no synchronization.
type Chain struct {
	providers    []providers.Provider
	onFallback   func(Attempt)
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewChain creates a fallback chain over the given ordered providers.
func NewChain(ps []providers.Provider, opts ...Option) *Chain {
	c := &Chain{
		providers:    ps,
		probeTimeout: DefaultProbeTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the number of providers in the chain.
func (c *Chain) Size() int {
	return len(c.providers)
}

// ProviderNames returns the chain's provider names in fallback order.
func (c *Chain) ProviderNames() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Complete tries each provider in order. The first success wins and ends
// the loop; a failure is recorded and the next provider is tried. A
// non-retryable error on the last provider aborts outright. A non-retryable
// error mid-chain still falls through to the next provider; only the tail
// of the list hard-stops.
func (c *Chain) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*Outcome, error) {
	attempts := make([]Attempt, 0, len(c.providers))

	for i, p := range c.providers {
		start := time.Now()

		result, err := p.Complete(ctx, messages, maxTokens, temperature)
		latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

		if err == nil {
			attempts = append(attempts, Attempt{
				Provider:  p.Name(),
				Success:   true,
				LatencyMs: latencyMs,
				Timestamp: time.Now().UTC(),
			})

			if len(attempts) > 1 {
				c.logger.Info("fallback succeeded",
					zap.String("provider", p.Name()),
					zap.Int("attempts", len(attempts)))
			}

			return &Outcome{Result: result, Attempts: attempts}, nil
		}

		attempt := Attempt{
			Provider:  p.Name(),
			Error:     err.Error(),
			LatencyMs: latencyMs,
			Timestamp: time.Now().UTC(),
		}
		attempts = append(attempts, attempt)

		retryable := true
		var provErr *providers.ProviderError
		if errors.As(err, &provErr) {
			retryable = provErr.Retryable
		}

		c.logger.Warn("provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.String("error", attempt.Error),
			zap.Bool("retryable", retryable))

		if c.onFallback != nil {
			c.onFallback(attempt)
		}

		// Fail fast when a fatal error hits the tail of the list.
		if !retryable && i == len(c.providers)-1 {
			return nil, &AllProvidersFailedError{Attempts: attempts}
		}
	}

	return nil, &AllProvidersFailedError{Attempts: attempts}
}

// probeOutcome carries one probe's result out of its goroutine. A probe
// that panics is reported with omit set and left out of the result map.
type probeOutcome struct {
	name    string
	healthy bool
	omit    bool
}

// HealthCheck probes all providers concurrently. Every probe is bounded by
// an independent timeout; a probe that exceeds it is recorded as unhealthy,
// so one stuck provider cannot delay the others' results.
func (c *Chain) HealthCheck(ctx context.Context) map[string]bool {
	results := make(chan probeOutcome, len(c.providers))

	for _, p := range c.providers {
		go func(p providers.Provider) {
			probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
			defer cancel()

			done := make(chan probeOutcome, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- probeOutcome{omit: true}
					}
				}()
				done <- probeOutcome{name: p.Name(), healthy: p.HealthCheck(probeCtx)}
			}()

			select {
			case out := <-done:
				results <- out
			case <-probeCtx.Done():
				results <- probeOutcome{name: p.Name(), healthy: false}
			}
		}(p)
	}

	health := make(map[string]bool, len(c.providers))
	for range c.providers {
		out := <-results
		if out.omit {
			continue
		}
		health[out.name] = out.healthy
	}

	return health
}

// Status reduces a health map to the aggregate status exposed to callers:
// "healthy" when at least one provider reports true, else "degraded".
func Status(health map[string]bool) string {
	for _, healthy := range health {
		if healthy {
			return "healthy"
		}
	}
	return "degraded"
}

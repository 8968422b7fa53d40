package fallback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

// stubProvider is a scriptable Provider for chain tests.
type stubProvider struct {
	name        string
	err         error
	content     string
	healthy     bool
	probeDelay  time.Duration
	probePanics bool
	calls       int
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &providers.CompletionResult{
		Content:      s.content,
		Provider:     s.name,
		Model:        "stub-model",
		InputTokens:  10,
		OutputTokens: 5,
		LatencyMs:    1.0,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) bool {
	if s.probePanics {
		panic("probe exploded")
	}
	if s.probeDelay > 0 {
		select {
		case <-time.After(s.probeDelay):
		case <-ctx.Done():
			return false
		}
	}
	return s.healthy
}

func (s *stubProvider) EstimateCost(inputTokens, outputTokens int) float64 { return 0 }

func retryableErr(provider string) error {
	return providers.NewProviderError(provider, "rate limit exceeded", 429, true, nil)
}

func fatalErr(provider string) error {
	return providers.NewProviderError(provider, "invalid API key", 401, false, nil)
}

func userMessage() []models.Message {
	return []models.Message{{Role: "user", Content: "hello"}}
}

func TestChain_Complete_FirstSuccessShortCircuits(t *testing.T) {
	a := &stubProvider{name: "groq", content: "hi from groq"}
	b := &stubProvider{name: "gemini", content: "hi from gemini"}
	chain := NewChain([]providers.Provider{a, b})

	outcome, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "groq", outcome.Result.Provider)
	assert.Len(t, outcome.Attempts, 1)
	assert.True(t, outcome.Attempts[0].Success)
	assert.False(t, outcome.FallbackUsed())
	assert.Equal(t, 0, b.calls, "later providers must not be tried after a success")
}

func TestChain_Complete_FallsBackOnRetryableError(t *testing.T) {
	a := &stubProvider{name: "groq", err: retryableErr("groq")}
	b := &stubProvider{name: "gemini", content: "hi from gemini"}
	chain := NewChain([]providers.Provider{a, b})

	outcome, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "gemini", outcome.Result.Provider)
	require.Len(t, outcome.Attempts, 2)
	assert.Equal(t, "groq", outcome.Attempts[0].Provider)
	assert.False(t, outcome.Attempts[0].Success)
	assert.Equal(t, "gemini", outcome.Attempts[1].Provider)
	assert.True(t, outcome.Attempts[1].Success)
	assert.True(t, outcome.FallbackUsed())
}

func TestChain_Complete_SuccessAtIndexRecordsAllAttempts(t *testing.T) {
	a := &stubProvider{name: "groq", err: retryableErr("groq")}
	b := &stubProvider{name: "gemini", err: retryableErr("gemini")}
	c := &stubProvider{name: "openai", content: "third time lucky"}
	chain := NewChain([]providers.Provider{a, b, c})

	outcome, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.NoError(t, err)

	assert.Len(t, outcome.Attempts, 3)
	assert.True(t, outcome.FallbackUsed())
	assert.Equal(t, "openai", outcome.Result.Provider)
}

func TestChain_Complete_AllFail(t *testing.T) {
	a := &stubProvider{name: "groq", err: retryableErr("groq")}
	b := &stubProvider{name: "gemini", err: retryableErr("gemini")}
	chain := NewChain([]providers.Provider{a, b})

	outcome, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.Error(t, err)
	assert.Nil(t, outcome)

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Attempts, 2)

	// The error text references every provider's own failure message.
	assert.Contains(t, err.Error(), "groq: rate limit exceeded")
	assert.Contains(t, err.Error(), "gemini: rate limit exceeded")
}

func TestChain_Complete_FatalOnLastProviderAborts(t *testing.T) {
	sole := &stubProvider{name: "openai", err: fatalErr("openai")}
	chain := NewChain([]providers.Provider{sole})

	_, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Attempts, 1)
	assert.Equal(t, 1, sole.calls)
}

func TestChain_Complete_FatalMidChainFallsThrough(t *testing.T) {
	// A non-retryable error on a non-final provider still falls through;
	// only the tail of the list hard-stops.
	a := &stubProvider{name: "groq", err: fatalErr("groq")}
	b := &stubProvider{name: "gemini", content: "still answered"}
	chain := NewChain([]providers.Provider{a, b})

	outcome, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "gemini", outcome.Result.Provider)
	assert.Len(t, outcome.Attempts, 2)
	assert.Equal(t, 1, b.calls)
}

func TestChain_Complete_ObserverSeesEveryFailedAttempt(t *testing.T) {
	a := &stubProvider{name: "groq", err: retryableErr("groq")}
	b := &stubProvider{name: "gemini", content: "ok"}

	var observed []Attempt
	chain := NewChain(
		[]providers.Provider{a, b},
		WithFallbackObserver(func(att Attempt) { observed = append(observed, att) }),
	)

	_, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)
	require.NoError(t, err)

	require.Len(t, observed, 1)
	assert.Equal(t, "groq", observed[0].Provider)
	assert.False(t, observed[0].Success)
	assert.NotEmpty(t, observed[0].Error)
}

func TestChain_Complete_EmptyChain(t *testing.T) {
	chain := NewChain(nil)

	_, err := chain.Complete(context.Background(), userMessage(), 100, 0.7)

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Empty(t, allFailed.Attempts)
}

func TestChain_HealthCheck(t *testing.T) {
	t.Run("mixed health", func(t *testing.T) {
		a := &stubProvider{name: "groq", healthy: true}
		b := &stubProvider{name: "gemini", healthy: false}
		chain := NewChain([]providers.Provider{a, b})

		health := chain.HealthCheck(context.Background())

		assert.Equal(t, map[string]bool{"groq": true, "gemini": false}, health)
	})

	t.Run("stuck probe is bounded by its own timeout", func(t *testing.T) {
		a := &stubProvider{name: "groq", healthy: true}
		b := &stubProvider{name: "gemini", healthy: true, probeDelay: time.Minute}
		chain := NewChain(
			[]providers.Provider{a, b},
			WithProbeTimeout(50*time.Millisecond),
		)

		start := time.Now()
		health := chain.HealthCheck(context.Background())
		elapsed := time.Since(start)

		assert.Equal(t, map[string]bool{"groq": true, "gemini": false}, health)
		assert.Less(t, elapsed, 2*time.Second, "call must return shortly after the probe timeout")
	})

	t.Run("panicking probe is omitted from the map", func(t *testing.T) {
		a := &stubProvider{name: "groq", healthy: true}
		b := &stubProvider{name: "gemini", probePanics: true}
		chain := NewChain([]providers.Provider{a, b})

		health := chain.HealthCheck(context.Background())

		assert.Equal(t, map[string]bool{"groq": true}, health)
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "healthy", Status(map[string]bool{"groq": false, "gemini": true}))
	assert.Equal(t, "degraded", Status(map[string]bool{"groq": false}))
	assert.Equal(t, "degraded", Status(map[string]bool{}))
}

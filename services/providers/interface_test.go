package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionResult_TotalTokens(t *testing.T) {
	result := &CompletionResult{InputTokens: 120, OutputTokens: 45}
	assert.Equal(t, 165, result.TotalTokens())
}

func TestProviderError(t *testing.T) {
	t.Run("error message format", func(t *testing.T) {
		err := NewProviderError("groq", "rate limit exceeded", 429, true, nil)
		assert.Equal(t, "groq: rate limit exceeded", err.Error())
	})

	t.Run("unwrap returns cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewProviderError("openai", "request failed", 0, true, cause)
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		inner := NewProviderError("gemini", "server error", 503, true, nil)
		wrapped := errors.Join(errors.New("context"), inner)

		var provErr *ProviderError
		require.True(t, errors.As(wrapped, &provErr))
		assert.Equal(t, "gemini", provErr.Provider)
		assert.True(t, provErr.Retryable)
	})
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{200, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryableStatus(tt.status), "status %d", tt.status)
	}
}

func TestPricing_Cost(t *testing.T) {
	p := Pricing{InputPerMillion: 2.50, OutputPerMillion: 10.00}

	t.Run("exact million", func(t *testing.T) {
		assert.InDelta(t, 12.50, p.Cost(1_000_000, 1_000_000), 1e-9)
	})

	t.Run("scales linearly", func(t *testing.T) {
		assert.InDelta(t, p.Cost(1000, 500)*2, p.Cost(2000, 1000), 1e-9)
	})

	t.Run("zero tokens cost nothing", func(t *testing.T) {
		assert.Zero(t, p.Cost(0, 0))
	})
}

func TestPriceTable_Lookup(t *testing.T) {
	table := PriceTable{
		Models: map[string]Pricing{
			"gpt-4o": {InputPerMillion: 2.50, OutputPerMillion: 10.00},
		},
		Default: Pricing{InputPerMillion: 5.00, OutputPerMillion: 15.00},
	}

	t.Run("known model", func(t *testing.T) {
		p := table.Lookup("gpt-4o")
		assert.Equal(t, 2.50, p.InputPerMillion)
	})

	t.Run("unknown model falls back to default", func(t *testing.T) {
		p := table.Lookup("gpt-99-ultra")
		assert.Equal(t, 5.00, p.InputPerMillion)
		assert.Equal(t, 15.00, p.OutputPerMillion)
	})
}

package groq

import (
	"context"
	"errors"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

const (
	providerName = "groq"

	// Groq exposes an OpenAI-compatible chat completions API.
	defaultBaseURL = "https://api.groq.com/openai/v1"
)

// pricing per 1M tokens (USD).
var priceTable = providers.PriceTable{
	Models: map[string]providers.Pricing{
		"llama-3.3-70b-versatile": {InputPerMillion: 0.59, OutputPerMillion: 0.79},
		"llama-3.1-70b-versatile": {InputPerMillion: 0.59, OutputPerMillion: 0.79},
		"llama-3.1-8b-instant":    {InputPerMillion: 0.05, OutputPerMillion: 0.08},
		"mixtral-8x7b-32768":      {InputPerMillion: 0.24, OutputPerMillion: 0.24},
		"gemma2-9b-it":            {InputPerMillion: 0.20, OutputPerMillion: 0.20},
	},
	Default: providers.Pricing{InputPerMillion: 0.50, OutputPerMillion: 0.50},
}

// Client implements the Provider capability over Groq's OpenAI-compatible API.
type Client struct {
	client *goopenai.Client
	model  string
}

// New creates a Groq-backed provider for the given model.
func New(apiKey, model string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = defaultBaseURL
	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete generates a completion via Groq's chat completions API.
func (c *Client) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	start := time.Now()

	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(providerName, "empty response from API", 0, true, nil)
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	inputTokens := resp.Usage.PromptTokens
	outputTokens := resp.Usage.CompletionTokens

	return &providers.CompletionResult{
		Content:      resp.Choices[0].Message.Content,
		Provider:     providerName,
		Model:        c.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		LatencyMs:    latency,
		CostUSD:      c.EstimateCost(inputTokens, outputTokens),
		Timestamp:    time.Now().UTC(),
	}, nil
}

// HealthCheck issues a minimal completion; any failure reports unhealthy.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.Complete(ctx, providers.HealthProbeMessages, providers.HealthProbeMaxTokens, 0)
	return err == nil
}

// EstimateCost returns the USD cost from the static Groq price table.
func (c *Client) EstimateCost(inputTokens, outputTokens int) float64 {
	return priceTable.Lookup(c.model).Cost(inputTokens, outputTokens)
}

func classifyError(err error) *providers.ProviderError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("API error: %s", apiErr.Message)
		if apiErr.HTTPStatusCode == 429 {
			msg = fmt.Sprintf("rate limit exceeded: %s", apiErr.Message)
		}
		return providers.NewProviderError(
			providerName, msg,
			apiErr.HTTPStatusCode,
			providers.RetryableStatus(apiErr.HTTPStatusCode),
			err,
		)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return providers.NewProviderError(
			providerName,
			fmt.Sprintf("request failed: %v", reqErr.Err),
			reqErr.HTTPStatusCode,
			providers.RetryableStatus(reqErr.HTTPStatusCode),
			err,
		)
	}

	return providers.NewProviderError(
		providerName,
		fmt.Sprintf("connection error: %v", err),
		0,
		true,
		err,
	)
}

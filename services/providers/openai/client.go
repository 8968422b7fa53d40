package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

const providerName = "openai"

// pricing per 1M tokens (USD), separate input/output rates.
var priceTable = providers.PriceTable{
	Models: map[string]providers.Pricing{
		"gpt-4o":        {InputPerMillion: 2.50, OutputPerMillion: 10.00},
		"gpt-4o-mini":   {InputPerMillion: 0.15, OutputPerMillion: 0.60},
		"gpt-4-turbo":   {InputPerMillion: 10.00, OutputPerMillion: 30.00},
		"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},
		"o1":            {InputPerMillion: 15.00, OutputPerMillion: 60.00},
		"o1-mini":       {InputPerMillion: 3.00, OutputPerMillion: 12.00},
	},
	Default: providers.Pricing{InputPerMillion: 5.00, OutputPerMillion: 15.00},
}

// Client implements the Provider capability over the OpenAI chat API.
type Client struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI-backed provider for the given model.
func New(apiKey, model string) *Client {
	return &Client{
		client: goopenai.NewClient(apiKey),
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

// Complete generates a completion via the OpenAI chat completions API.
func (c *Client) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	start := time.Now()

	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyError(providerName, err)
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

// EstimateCost returns the USD cost from the static OpenAI price table.
func (c *Client) EstimateCost(inputTokens, outputTokens int) float64 {
	return priceTable.Lookup(c.model).Cost(inputTokens, outputTokens)
}

// convertMessages maps domain messages to the SDK's request type.
func convertMessages(messages []models.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// classifyError normalizes go-openai SDK failures into *ProviderError.
// API errors carry an HTTP status; everything else is treated as a
// transient connectivity fault.
func classifyError(provider string, err error) *providers.ProviderError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(
			provider,
			fmt.Sprintf("API error: %s", apiErr.Message),
			apiErr.HTTPStatusCode,
			providers.RetryableStatus(apiErr.HTTPStatusCode),
			err,
		)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return providers.NewProviderError(
			provider,
			fmt.Sprintf("request failed: %v", reqErr.Err),
			reqErr.HTTPStatusCode,
			providers.RetryableStatus(reqErr.HTTPStatusCode),
			err,
		)
	}

	return providers.NewProviderError(
		provider,
		fmt.Sprintf("connection error: %v", err),
		0,
		true,
		err,
	)
}

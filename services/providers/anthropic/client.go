package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

const providerName = "anthropic"

// pricing per 1M tokens (USD).
var priceTable = providers.PriceTable{
	Models: map[string]providers.Pricing{
		"claude-3-5-sonnet-20241022": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
		"claude-3-5-haiku-20241022":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
		"claude-3-opus-20240229":     {InputPerMillion: 15.00, OutputPerMillion: 75.00},
		"claude-3-haiku-20240307":    {InputPerMillion: 0.25, OutputPerMillion: 1.25},
	},
	Default: providers.Pricing{InputPerMillion: 3.00, OutputPerMillion: 15.00},
}

// Client implements the Provider capability over the Anthropic Messages API.
type Client struct {
	client sdk.Client
	model  string
}

// New creates an Anthropic-backed provider for the given model.
func New(apiKey, model string) *Client {
	return &Client{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
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

// Complete generates a completion via the Anthropic Messages API.
func (c *Client) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	start := time.Now()

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(temperature),
	}

	// The Messages API keeps the system prompt out of the turn list.
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.System = []sdk.TextBlockParam{{Text: m.Content}}
		case "assistant":
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if variant, ok := block.AsAny().(sdk.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	inputTokens := int(message.Usage.InputTokens)
	outputTokens := int(message.Usage.OutputTokens)

	return &providers.CompletionResult{
		Content:      sb.String(),
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

// EstimateCost returns the USD cost from the static Anthropic price table.
func (c *Client) EstimateCost(inputTokens, outputTokens int) float64 {
	return priceTable.Lookup(c.model).Cost(inputTokens, outputTokens)
}

func classifyError(err error) *providers.ProviderError {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(
			providerName,
			fmt.Sprintf("API error: %v", apiErr.Error()),
			apiErr.StatusCode,
			providers.RetryableStatus(apiErr.StatusCode),
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

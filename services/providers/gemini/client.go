package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/services/providers"
)

const (
	providerName = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// pricing per 1M tokens (USD).
var priceTable = providers.PriceTable{
	Models: map[string]providers.Pricing{
		"gemini-1.5-flash":     {InputPerMillion: 0.075, OutputPerMillion: 0.30},
		"gemini-1.5-flash-8b":  {InputPerMillion: 0.0375, OutputPerMillion: 0.15},
		"gemini-1.5-pro":       {InputPerMillion: 1.25, OutputPerMillion: 5.00},
		"gemini-2.0-flash-exp": {InputPerMillion: 0, OutputPerMillion: 0}, // free during preview
	},
	Default: providers.Pricing{InputPerMillion: 0.50, OutputPerMillion: 1.50},
}

// Client implements the Provider capability over the Gemini REST API.
// There is no official Go SDK dependency here; the adapter speaks the
// generateContent endpoint directly.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a Gemini-backed provider for the given model.
func New(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
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

// Complete generates a completion via the Gemini generateContent API.
func (c *Client) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	start := time.Now()

	body, err := json.Marshal(c.buildRequest(messages, maxTokens, temperature))
	if err != nil {
		return nil, providers.NewProviderError(providerName, "failed to marshal request", 0, false, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(providerName, "failed to create request", 0, false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(providerName, fmt.Sprintf("connection error: %v", err), 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(providerName, "failed to read response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var resp generateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(providerName, "failed to unmarshal response", httpResp.StatusCode, false, err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, providers.NewProviderError(providerName, "empty response from API", httpResp.StatusCode, true, nil)
	}

	content := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		content += part.Text
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	inputTokens := resp.UsageMetadata.PromptTokenCount
	outputTokens := resp.UsageMetadata.CandidatesTokenCount

	return &providers.CompletionResult{
		Content:      content,
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

// EstimateCost returns the USD cost from the static Gemini price table.
func (c *Client) EstimateCost(inputTokens, outputTokens int) float64 {
	return priceTable.Lookup(c.model).Cost(inputTokens, outputTokens)
}

// buildRequest converts domain messages to the Gemini wire format.
// Gemini separates the system instruction from the turn history and uses
// "model" instead of "assistant" for the responder role.
func (c *Client) buildRequest(messages []models.Message, maxTokens int, temperature float64) *generateContentRequest {
	req := &generateContentRequest{
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
		},
	}

	for _, m := range messages {
		switch m.Role {
		case "system":
			req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case "assistant":
			req.Contents = append(req.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: m.Content}},
			})
		default:
			req.Contents = append(req.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	return req
}

// handleErrorResponse maps a non-200 Gemini response to a classified error.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return providers.NewProviderError(
		providerName,
		fmt.Sprintf("API error: %s", message),
		statusCode,
		providers.RetryableStatus(statusCode),
		nil,
	)
}

// Gemini-specific request/response types

type generateContentRequest struct {
	SystemInstruction *geminiContent   `json:"system_instruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/models"
	"github.com/upb/unified-ai-gateway/repositories/memory"
	"github.com/upb/unified-ai-gateway/services"
	"github.com/upb/unified-ai-gateway/services/fallback"
	"github.com/upb/unified-ai-gateway/services/providers"
)

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return p.name + "-model" }

func (p *stubProvider) Complete(_ context.Context, _ []models.Message, _ int, _ float64) (*providers.CompletionResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &providers.CompletionResult{
		Content:      p.content,
		Provider:     p.name,
		Model:        p.Model(),
		InputTokens:  12,
		OutputTokens: 8,
		CostUSD:      0.0001,
	}, nil
}

func (p *stubProvider) HealthCheck(_ context.Context) bool { return p.err == nil }

func (p *stubProvider) EstimateCost(_, _ int) float64 { return 0.0001 }

func newService(t *testing.T, ps ...providers.Provider) (*Service, *memory.SessionRepository) {
	t.Helper()
	repo := memory.NewSessionRepository(100)
	chain := fallback.NewChain(ps)
	return NewService(chain, repo, zap.NewNop()), repo
}

func TestService_Complete_NewSession(t *testing.T) {
	svc, repo := newService(t, &stubProvider{name: "groq", content: "Hello!"})

	resp, err := svc.Complete(context.Background(), &Request{
		SessionID: "sess-1",
		Product:   "chatbot",
		Message:   "Hi there",
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "chatbot", resp.Product)
	assert.Equal(t, "Hello!", resp.Response)
	assert.Equal(t, "groq", resp.Provider)
	assert.False(t, resp.FallbackUsed)
	// system prompt + user + assistant
	assert.Equal(t, 3, resp.MessageCount)

	stored, err := repo.Get(context.Background(), "sess-1", models.ProductChatbot)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Messages, 3)
	assert.Equal(t, "system", stored.Messages[0].Role)
	assert.Equal(t, "user", stored.Messages[1].Role)
	assert.Equal(t, "Hi there", stored.Messages[1].Content)
	assert.Equal(t, "assistant", stored.Messages[2].Role)
}

func TestService_Complete_ExistingSessionAccumulates(t *testing.T) {
	svc, _ := newService(t, &stubProvider{name: "groq", content: "reply"})

	ctx := context.Background()
	req := &Request{SessionID: "sess-2", Product: "chatbot", Message: "first"}
	_, err := svc.Complete(ctx, req)
	require.NoError(t, err)

	req.Message = "second"
	resp, err := svc.Complete(ctx, req)
	require.NoError(t, err)

	// system + 2x(user, assistant)
	assert.Equal(t, 5, resp.MessageCount)
}

func TestService_Complete_GeneratesSessionID(t *testing.T) {
	svc, _ := newService(t, &stubProvider{name: "groq", content: "ok"})

	resp, err := svc.Complete(context.Background(), &Request{
		Product: "chatbot",
		Message: "anonymous turn",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
}

func TestService_Complete_UnknownProduct(t *testing.T) {
	svc, _ := newService(t, &stubProvider{name: "groq", content: "ok"})

	_, err := svc.Complete(context.Background(), &Request{
		SessionID: "sess-3",
		Product:   "time_machine",
		Message:   "take me back",
	})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.True(t, errors.Is(err, services.ErrInvalidProduct))
	assert.Equal(t, "time_machine", services.GetErrorDetails(err)["product"])
}

func TestService_Complete_FallbackRecorded(t *testing.T) {
	failing := &stubProvider{name: "groq", err: providers.NewProviderError("groq", "rate limit exceeded", 429, true, nil)}
	working := &stubProvider{name: "openai", content: "rescued"}
	svc, _ := newService(t, failing, working)

	resp, err := svc.Complete(context.Background(), &Request{
		SessionID: "sess-4",
		Product:   "chatbot",
		Message:   "hello",
	})
	require.NoError(t, err)

	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, "openai", resp.Provider)
	require.Len(t, resp.Attempts, 2)
	assert.False(t, resp.Attempts[0].Success)
	assert.True(t, resp.Attempts[1].Success)
}

func TestService_Complete_AllProvidersFailedLeavesNoSession(t *testing.T) {
	failing := &stubProvider{name: "groq", err: providers.NewProviderError("groq", "boom", 500, true, nil)}
	svc, repo := newService(t, failing)

	_, err := svc.Complete(context.Background(), &Request{
		SessionID: "sess-5",
		Product:   "chatbot",
		Message:   "hello",
	})
	require.Error(t, err)

	var allFailed *fallback.AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Attempts, 1)

	stored, err := repo.Get(context.Background(), "sess-5", models.ProductChatbot)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestService_Complete_RequestParameterOverrides(t *testing.T) {
	var gotMaxTokens int
	var gotTemperature float64
	capture := &captureProvider{onComplete: func(maxTokens int, temperature float64) {
		gotMaxTokens = maxTokens
		gotTemperature = temperature
	}}
	svc, _ := newService(t, capture)

	temp := 1.3
	_, err := svc.Complete(context.Background(), &Request{
		SessionID:   "sess-6",
		Product:     "chatbot",
		Message:     "hello",
		MaxTokens:   250,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, 250, gotMaxTokens)
	assert.Equal(t, 1.3, gotTemperature)
}

func TestService_Complete_ProductDefaultsApply(t *testing.T) {
	var gotMaxTokens int
	var gotTemperature float64
	capture := &captureProvider{onComplete: func(maxTokens int, temperature float64) {
		gotMaxTokens = maxTokens
		gotTemperature = temperature
	}}
	svc, _ := newService(t, capture)

	_, err := svc.Complete(context.Background(), &Request{
		SessionID: "sess-7",
		Product:   "code_reviewer",
		Message:   "review this",
	})
	require.NoError(t, err)

	assert.Equal(t, 2000, gotMaxTokens)
	assert.Equal(t, 0.3, gotTemperature)
}

type captureProvider struct {
	onComplete func(maxTokens int, temperature float64)
}

func (p *captureProvider) Name() string  { return "capture" }
func (p *captureProvider) Model() string { return "capture-model" }

func (p *captureProvider) Complete(_ context.Context, _ []models.Message, maxTokens int, temperature float64) (*providers.CompletionResult, error) {
	p.onComplete(maxTokens, temperature)
	return &providers.CompletionResult{Content: "ok", Provider: "capture", Model: "capture-model"}, nil
}

func (p *captureProvider) HealthCheck(_ context.Context) bool { return true }

func (p *captureProvider) EstimateCost(_, _ int) float64 { return 0 }

func TestService_GetSession(t *testing.T) {
	svc, repo := newService(t, &stubProvider{name: "groq", content: "ok"})
	ctx := context.Background()

	t.Run("existing session", func(t *testing.T) {
		session := models.NewSession("sess-8", models.ProductChatbot)
		require.NoError(t, repo.Save(ctx, session))

		got, err := svc.GetSession(ctx, "sess-8", models.ProductChatbot)
		require.NoError(t, err)
		assert.Equal(t, "sess-8", got.ID)
	})

	t.Run("absent session", func(t *testing.T) {
		_, err := svc.GetSession(ctx, "ghost", models.ProductChatbot)
		assert.True(t, services.IsNotFoundError(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.GetSession(ctx, "sess-8", models.Product("bogus"))
		assert.True(t, services.IsValidationError(err))
		assert.True(t, errors.Is(err, services.ErrInvalidProduct))
	})
}

func TestService_DeleteSession(t *testing.T) {
	svc, repo := newService(t, &stubProvider{name: "groq", content: "ok"})
	ctx := context.Background()

	session := models.NewSession("sess-9", models.ProductChatbot)
	require.NoError(t, repo.Save(ctx, session))

	require.NoError(t, svc.DeleteSession(ctx, "sess-9", models.ProductChatbot))

	err := svc.DeleteSession(ctx, "sess-9", models.ProductChatbot)
	assert.True(t, services.IsNotFoundError(err))
}

func TestService_Health(t *testing.T) {
	healthy := &stubProvider{name: "groq", content: "ok"}
	unhealthy := &stubProvider{name: "openai", err: providers.NewProviderError("openai", "down", 500, true, nil)}
	svc, _ := newService(t, healthy, unhealthy)

	health := svc.Health(context.Background())
	assert.Equal(t, map[string]bool{"groq": true, "openai": false}, health)
	assert.Equal(t, []string{"groq", "openai"}, svc.Providers())
}

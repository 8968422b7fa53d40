package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/config"
	"github.com/upb/unified-ai-gateway/middleware"
	"github.com/upb/unified-ai-gateway/repositories"
	"github.com/upb/unified-ai-gateway/services/completion"
	"github.com/upb/unified-ai-gateway/services/fallback"
	"github.com/upb/unified-ai-gateway/services/providers"
	"github.com/upb/unified-ai-gateway/services/providers/anthropic"
	"github.com/upb/unified-ai-gateway/services/providers/gemini"
	"github.com/upb/unified-ai-gateway/services/providers/groq"
	"github.com/upb/unified-ai-gateway/services/providers/openai"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Session storage
	Sessions repositories.SessionRepository

	// Provider chain
	Registry *providers.Registry
	Chain    *fallback.Chain

	// Services
	Completion *completion.Service

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initSessions(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}

	deps.initProviders(cfg)
	deps.initServices()

	deps.AuthMiddleware = middleware.NewAuthMiddleware(cfg.API.Key, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initSessions initializes the session store: redis when configured, else
// the bounded in-process store.
func (d *Dependencies) initSessions(ctx context.Context, cfg *config.Config) error {
	repo, err := repositories.NewSessionRepository(ctx, cfg, d.Logger)
	if err != nil {
		return err
	}
	d.Sessions = repo
	return nil
}

// initProviders registers every known provider builder and assembles the
// fallback chain from the configured order and credentials. Providers
// without an API key are simply left out of the chain.
func (d *Dependencies) initProviders(cfg *config.Config) {
	registry := providers.NewRegistry()

	_ = registry.Register("groq", func(apiKey, model string) providers.Provider {
		return groq.New(apiKey, model)
	})
	_ = registry.Register("gemini", func(apiKey, model string) providers.Provider {
		return gemini.New(apiKey, model)
	})
	_ = registry.Register("openai", func(apiKey, model string) providers.Provider {
		return openai.New(apiKey, model)
	})
	_ = registry.Register("anthropic", func(apiKey, model string) providers.Provider {
		return anthropic.New(apiKey, model)
	})

	creds := map[string]providers.Credential{
		"groq":      {APIKey: cfg.Providers.Groq.APIKey, Model: cfg.Providers.Groq.Model},
		"gemini":    {APIKey: cfg.Providers.Gemini.APIKey, Model: cfg.Providers.Gemini.Model},
		"openai":    {APIKey: cfg.Providers.OpenAI.APIKey, Model: cfg.Providers.OpenAI.Model},
		"anthropic": {APIKey: cfg.Providers.Anthropic.APIKey, Model: cfg.Providers.Anthropic.Model},
	}

	chainProviders := registry.BuildChain(cfg.ProviderOrder(), creds, d.Logger)

	d.Registry = registry
	d.Chain = fallback.NewChain(chainProviders, fallback.WithLogger(d.Logger))
}

// initServices wires the domain services on top of the chain and store.
func (d *Dependencies) initServices() {
	d.Completion = completion.NewService(d.Chain, d.Sessions, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if closer, ok := d.Sessions.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close session store: %w", err))
		} else {
			d.Logger.Info("session store closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

package providers

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUnknownProvider is returned when no builder is registered for a name
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderAlreadyRegistered is returned when registering a duplicate builder
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Credential is the per-provider configuration the registry needs to
// instantiate a client.
type Credential struct {
	APIKey string
	Model  string
}

// Builder constructs a Provider from its credential and model.
type Builder func(apiKey, model string) Provider

// Registry maps provider names to builders and assembles fallback chains
// from configuration.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder under the given name.
func (r *Registry) Register(name string, builder Builder) error {
	if builder == nil {
		return errors.New("builder cannot be nil")
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; exists {
		return ErrProviderAlreadyRegistered
	}

	r.builders[name] = builder
	return nil
}

// Build instantiates a single provider by name.
func (r *Registry) Build(name string, cred Credential) (Provider, error) {
	r.mu.RLock()
	builder, exists := r.builders[strings.ToLower(name)]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrUnknownProvider
	}

	return builder(cred.APIKey, cred.Model), nil
}

// Names returns all registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// BuildChain instantiates providers strictly in the configured fallback
// order. A provider whose credential is absent is skipped and logged, never
// errored; a name with no registered builder is skipped the same way.
func (r *Registry) BuildChain(order []string, creds map[string]Credential, logger *zap.Logger) []Provider {
	chain := make([]Provider, 0, len(order))

	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))

		cred, ok := creds[name]
		if !ok || cred.APIKey == "" {
			logger.Debug("provider skipped (no API key)", zap.String("provider", name))
			continue
		}

		provider, err := r.Build(name, cred)
		if err != nil {
			logger.Debug("provider skipped (no builder)", zap.String("provider", name))
			continue
		}

		chain = append(chain, provider)
		logger.Info("provider configured",
			zap.String("provider", name),
			zap.String("model", provider.Model()))
	}

	if len(chain) == 0 {
		logger.Warn("no LLM providers configured")
	}

	return chain
}

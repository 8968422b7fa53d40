package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	API           APIConfig
	Providers     ProvidersConfig
	Sessions      SessionsConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// APIConfig holds the public API surface configuration
type APIConfig struct {
	Key     string // API key required in X-API-Key; empty disables auth
	Title   string
	Version string
}

// ProviderConfig holds one LLM provider's credential and model selection.
// A provider with an empty APIKey is skipped when building the chain.
type ProviderConfig struct {
	APIKey string
	Model  string
}

// ProvidersConfig holds LLM provider configurations and the fallback order
type ProvidersConfig struct {
	Order     string // comma-separated provider names in fallback order
	Groq      ProviderConfig
	Gemini    ProviderConfig
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
}

// SessionsConfig holds session storage configuration.
// When RedisURL is empty the bounded in-process store is used.
type SessionsConfig struct {
	RedisURL    string
	MaxSessions int           // in-process store capacity
	TTL         time.Duration // redis record lifetime
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if present; real environment variables win
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			Key:     getEnv("API_KEY", ""),
			Title:   getEnv("API_TITLE", "Unified AI Gateway"),
			Version: getEnv("API_VERSION", "0.1.0"),
		},
		Providers: ProvidersConfig{
			Order: getEnv("LLM_PROVIDER_ORDER", "groq,gemini,openai,anthropic"),
			Groq: ProviderConfig{
				APIKey: getEnv("GROQ_API_KEY", ""),
				Model:  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			},
			Gemini: ProviderConfig{
				APIKey: getEnv("GOOGLE_API_KEY", ""),
				Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			},
			OpenAI: ProviderConfig{
				APIKey: getEnv("OPENAI_API_KEY", ""),
				Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Anthropic: ProviderConfig{
				APIKey: getEnv("ANTHROPIC_API_KEY", ""),
				Model:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			},
		},
		Sessions: SessionsConfig{
			RedisURL:    getEnv("REDIS_URL", ""),
			MaxSessions: getEnvAsInt("SESSION_MAX_SESSIONS", 10000),
			TTL:         getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	if len(c.ProviderOrder()) == 0 {
		return fmt.Errorf("provider order cannot be empty")
	}

	// At least one provider credential required in production
	if c.IsProduction() && len(c.AvailableProviders()) == 0 {
		return fmt.Errorf("at least one LLM provider must be configured in production")
	}

	if c.IsProduction() && c.API.Key == "" {
		return fmt.Errorf("API key is required in production")
	}

	return nil
}

// ProviderOrder returns the fallback order as a normalized list
func (c *Config) ProviderOrder() []string {
	parts := strings.Split(c.Providers.Order, ",")
	order := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.ToLower(strings.TrimSpace(p)); name != "" {
			order = append(order, name)
		}
	}
	return order
}

// AvailableProviders returns the providers that have an API key configured
func (c *Config) AvailableProviders() []string {
	var available []string
	if c.Providers.Groq.APIKey != "" {
		available = append(available, "groq")
	}
	if c.Providers.Gemini.APIKey != "" {
		available = append(available, "gemini")
	}
	if c.Providers.OpenAI.APIKey != "" {
		available = append(available, "openai")
	}
	if c.Providers.Anthropic.APIKey != "" {
		available = append(available, "anthropic")
	}
	return available
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

package repositories

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/config"
	"github.com/upb/unified-ai-gateway/repositories/memory"
	"github.com/upb/unified-ai-gateway/repositories/redis"
)

// NewSessionRepository creates the session store the configuration asks
// for: Redis when a URL is configured, otherwise the bounded in-process
// store.
func NewSessionRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (SessionRepository, error) {
	if cfg.Sessions.RedisURL != "" {
		repo, err := redis.NewSessionRepository(ctx, cfg.Sessions.RedisURL, cfg.Sessions.TTL)
		if err != nil {
			return nil, err
		}
		logger.Info("session storage initialized", zap.String("type", "redis"))
		return repo, nil
	}

	logger.Info("session storage initialized",
		zap.String("type", "in-memory"),
		zap.Int("max_sessions", cfg.Sessions.MaxSessions))
	return memory.NewSessionRepository(cfg.Sessions.MaxSessions), nil
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"eat-backend/internal/infrastructure/config"
	"eat-backend/internal/pkg/common"
)

// Service is a Redis-backed cache for AI responses, keyed by a hash of the
// normalized prompt.
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService creates the cache service. With caching disabled the service is
// a no-op and Redis is never contacted.
func NewService(cfg *config.CacheConfig) (*Service, error) {
	if !cfg.Enabled {
		common.LogInfo("AI response cache disabled")
		return &Service{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("AI response cache initialized",
		zap.String("addr", cfg.Addr),
		zap.Duration("ttl", cfg.TTL),
	)

	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Get returns the cached response for a prompt, or an error on miss.
func (s *Service) Get(ctx context.Context, prompt string) (string, error) {
	if !s.config.Enabled || s.client == nil {
		return "", common.ErrCacheDisabled
	}

	val, err := s.client.Get(ctx, s.key(prompt)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("cache miss")
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set stores a response under the prompt's key.
func (s *Service) Set(ctx context.Context, prompt, content string) error {
	if !s.config.Enabled || s.client == nil {
		return nil
	}

	if err := s.client.Set(ctx, s.key(prompt), content, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *Service) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *Service) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("ai:response:%s", hex.EncodeToString(sum[:]))
}

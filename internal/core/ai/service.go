package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"eat-backend/internal/core/ai/cache"
	"eat-backend/internal/infrastructure/config"
	"eat-backend/internal/pkg/common"
)

// Response is the AI response content.
type Response struct {
	Content  string
	CacheHit bool
}

// Service fronts the OpenRouter client with the response cache.
type Service struct {
	config     *config.Config
	openRouter *OpenRouterClient
	cache      *cache.Service
}

// NewService creates the AI service.
func NewService(cfg *config.Config, cacheSvc *cache.Service) *Service {
	return &Service{
		config:     cfg,
		openRouter: NewOpenRouterClient(&cfg.OpenRouter),
		cache:      cacheSvc,
	}
}

// Complete sends a prompt and returns the model's text content. Whitespace is
// normalized first so equivalent prompts share one cache key.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.Join(strings.Fields(strings.TrimSpace(prompt)), " ")

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, prompt); err == nil && val != "" {
			common.LogDebug("AI cache hit")
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.openRouter.GenerateResponse(ctx, prompt)
	if err != nil {
		common.LogError("AI request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return "", err
	}
	common.LogInfo("AI request completed",
		zap.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, prompt, content); err != nil {
			common.LogWarn("failed to cache AI response", zap.Error(err))
		}
	}

	return content, nil
}

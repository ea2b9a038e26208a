// Package service 組合 AI 提供者與結果快取，對外提供替代建議
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/ai/cache"
	"github.com/kaushick2000/cookmate-backend/internal/core/ai/gemini"
	"github.com/kaushick2000/cookmate-backend/internal/core/ai/openrouter"
	"github.com/kaushick2000/cookmate-backend/internal/core/ai/provider"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// Service AI 服務，實作 substitution.Suggester
type Service struct {
	provider provider.Provider
	cache    cache.Store
	metrics  *metrics.Metrics
}

var _ substitution.Suggester = (*Service)(nil)

// New 以現成的提供者與快取創建服務，store 可為 nil
func New(p provider.Provider, store cache.Store, m *metrics.Metrics) *Service {
	return &Service{provider: p, cache: store, metrics: m}
}

// NewService 依設定創建 AI 服務，未設定提供者時回傳 nil
func NewService(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if p == nil {
		common.LogInfo("未設定 AI 提供者，只使用規則替代")
		return nil, nil
	}

	var store cache.Store
	if cfg.Cache.Enabled {
		store, err = newStore(ctx, cfg.Cache)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
	}

	common.LogInfo("AI 服務已初始化",
		zap.String("provider", p.Name()),
		zap.Bool("cache", store != nil),
	)
	return New(p, store, m), nil
}

func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenRouter:
		common.LogInfo("使用 OpenRouter",
			zap.String("model", cfg.OpenRouter.Model),
			zap.String("api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		)
		return openrouter.NewClient(provider.Config{
			APIKey:    cfg.OpenRouter.APIKey,
			Model:     cfg.OpenRouter.Model,
			MaxTokens: cfg.OpenRouter.MaxTokens,
			Timeout:   cfg.AI.Timeout,
			BaseURL:   cfg.OpenRouter.BaseURL,
		}), nil
	case config.ProviderGemini:
		common.LogInfo("使用 Gemini",
			zap.String("model", cfg.Gemini.Model),
			zap.String("api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		)
		return gemini.NewClient(ctx, provider.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.AI.Timeout,
		})
	case config.ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

func newStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedisStore(ctx, cfg)
	case config.CacheBackendMemory, "":
		return cache.NewMemoryStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// ProviderName 目前使用的提供者
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Suggest 先查快取，未命中時呼叫提供者並把非空結果寫回快取
func (s *Service) Suggest(ctx context.Context, ingredient string) ([]substitution.Substitution, error) {
	if subs, ok := s.lookup(ctx, ingredient); ok {
		return subs, nil
	}

	start := time.Now()
	subs, err := s.provider.Suggest(ctx, ingredient)
	duration := time.Since(start)
	common.LogAICall(s.provider.Name(), ingredient, duration, err)
	s.metrics.RecordAIRequest(s.provider.Name(), duration, err)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(subs) > 0 {
		if err := s.cache.Set(ctx, ingredient, subs); err != nil {
			common.LogWarn("寫入快取失敗", zap.String("ingredient", ingredient), zap.Error(err))
		}
	}
	return subs, nil
}

func (s *Service) lookup(ctx context.Context, ingredient string) ([]substitution.Substitution, bool) {
	if s.cache == nil {
		return nil, false
	}
	subs, found, err := s.cache.Get(ctx, ingredient)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup(s.cache.Backend(), "error")
		common.LogWarn("讀取快取失敗", zap.String("ingredient", ingredient), zap.Error(err))
		return nil, false
	case found:
		s.metrics.RecordCacheLookup(s.cache.Backend(), "hit")
		return subs, true
	default:
		s.metrics.RecordCacheLookup(s.cache.Backend(), "miss")
		return nil, false
	}
}

// Close 關閉提供者與快取
func (s *Service) Close() error {
	var errs []error
	if err := s.provider.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

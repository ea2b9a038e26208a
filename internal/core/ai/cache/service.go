package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// RedisStore 以 Redis 儲存的快取，可在多個實例間共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 快取並測試連線
func NewRedisStore(ctx context.Context, cfg config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Backend 實作 Store
func (s *RedisStore) Backend() string {
	return config.CacheBackendRedis
}

// Get 實作 Store
func (s *RedisStore) Get(ctx context.Context, ingredient string) ([]substitution.Substitution, bool, error) {
	key := generateKey(ingredient)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		common.LogCacheMiss(config.CacheBackendRedis, key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var subs []substitution.Substitution
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	common.LogCacheHit(config.CacheBackendRedis, key)
	return subs, true, nil
}

// Set 實作 Store
func (s *RedisStore) Set(ctx context.Context, ingredient string, subs []substitution.Substitution) error {
	if len(subs) == 0 {
		return nil
	}

	data, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("failed to marshal substitutions: %w", err)
	}
	if err := s.client.Set(ctx, generateKey(ingredient), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

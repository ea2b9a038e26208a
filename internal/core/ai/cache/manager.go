package cache

import (
	"context"
	"slices"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// MemoryStore 行程內快取，過期項目由 go-cache 定期清理
type MemoryStore struct {
	cache *gocache.Cache
	stats cacheStats
}

// cacheStats 緩存統計
type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// Stats 快取統計快照
type Stats struct {
	Size     int     `json:"size"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Sets     int64   `json:"sets"`
	HitRatio float64 `json:"hit_ratio"`
}

// NewMemoryStore 創建行程內快取
func NewMemoryStore(cfg config.CacheConfig) *MemoryStore {
	m := &MemoryStore{
		cache: gocache.New(cfg.TTL, cfg.CleanupInterval),
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", config.CacheBackendMemory),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)
	return m
}

// Backend 實作 Store
func (m *MemoryStore) Backend() string {
	return config.CacheBackendMemory
}

// Get 實作 Store
func (m *MemoryStore) Get(_ context.Context, ingredient string) ([]substitution.Substitution, bool, error) {
	key := generateKey(ingredient)
	if v, found := m.cache.Get(key); found {
		if subs, ok := v.([]substitution.Substitution); ok {
			m.stats.hits.Add(1)
			common.LogCacheHit(config.CacheBackendMemory, key)
			return slices.Clone(subs), true, nil
		}
	}
	m.stats.misses.Add(1)
	common.LogCacheMiss(config.CacheBackendMemory, key)
	return nil, false, nil
}

// Set 實作 Store
func (m *MemoryStore) Set(_ context.Context, ingredient string, subs []substitution.Substitution) error {
	if len(subs) == 0 {
		return nil
	}
	m.cache.Set(generateKey(ingredient), slices.Clone(subs), gocache.DefaultExpiration)
	m.stats.sets.Add(1)
	return nil
}

// GetStats 獲取緩存統計信息
func (m *MemoryStore) GetStats() Stats {
	hits, misses := m.stats.hits.Load(), m.stats.misses.Load()
	s := Stats{
		Size:   m.cache.ItemCount(),
		Hits:   hits,
		Misses: misses,
		Sets:   m.stats.sets.Load(),
	}
	if total := hits + misses; total > 0 {
		s.HitRatio = float64(hits) / float64(total)
	}
	return s
}

// Close 清空快取
func (m *MemoryStore) Close() error {
	m.cache.Flush()
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.hits.Load()),
		zap.Int64("未命中次數", m.stats.misses.Load()),
	)
	return nil
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
)

var sample = []substitution.Substitution{
	{Ingredient: "Lime juice", Ratio: "1:1", Note: "Brighter"},
}

func TestGenerateKeyNormalizes(t *testing.T) {
	assert.Equal(t, generateKey("tamarind"), generateKey("  Tamarind "))
	assert.NotEqual(t, generateKey("tamarind"), generateKey("tamari"))
	assert.Contains(t, generateKey("x"), keyPrefix)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(config.CacheConfig{TTL: time.Hour, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = m.Close() })

	_, found, err := m.Get(ctx, "tamarind")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "tamarind", nil))
	assert.Equal(t, 0, m.GetStats().Size)

	require.NoError(t, m.Set(ctx, "Tamarind", sample))
	got, found, err := m.Get(ctx, "tamarind")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample, got)

	// 回傳的切片不能影響快取內容
	got[0].Ingredient = "changed"
	again, _, _ := m.Get(ctx, "tamarind")
	assert.Equal(t, "Lime juice", again[0].Ingredient)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio, 1e-9)
	assert.Equal(t, "memory", m.Backend())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(config.CacheConfig{TTL: time.Hour, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Set(ctx, "tamarind", sample))
	m.expire("tamarind")
	time.Sleep(2 * time.Millisecond)

	_, found, err := m.Get(ctx, "tamarind")
	require.NoError(t, err)
	assert.False(t, found)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), config.CacheConfig{
		RedisAddr: mr.Addr(),
		TTL:       time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, found, err := s.Get(ctx, "tamarind")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "tamarind", nil))
	assert.Empty(t, mr.Keys())

	require.NoError(t, s.Set(ctx, "tamarind", sample))
	got, found, err := s.Get(ctx, " TAMARIND")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample, got)

	key := generateKey("tamarind")
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, found, err = s.Get(ctx, "tamarind")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "redis", s.Backend())
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set(generateKey("tamarind"), "{not json"))

	_, _, err := s.Get(context.Background(), "tamarind")
	assert.Error(t, err)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), config.CacheConfig{RedisAddr: addr, TTL: time.Hour})
	assert.Error(t, err)
}

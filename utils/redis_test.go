package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestGenerateQueryCacheKey_OrderIndependent(t *testing.T) {
	a := GenerateQueryCacheKey("p", map[string]string{"type": "villa", "page": "2"})
	b := GenerateQueryCacheKey("p", map[string]string{"page": "2", "type": "villa"})
	c := GenerateQueryCacheKey("p", map[string]string{"page": "3", "type": "villa"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCache_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	key, err := cache.PropertyListKey(ctx, "user", map[string]string{"page": "1"})
	require.NoError(t, err)
	require.NoError(t, cache.SetCached(ctx, key, map[string]int{"total": 3}))

	var got map[string]int
	hit, err := cache.GetCached(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got["total"])

	adminKey, err := cache.PropertyListKey(ctx, "admin", map[string]string{"page": "1"})
	require.NoError(t, err)
	assert.NotEqual(t, key, adminKey)

	require.NoError(t, cache.InvalidateProperties(ctx))
	fresh, err := cache.PropertyListKey(ctx, "user", map[string]string{"page": "1"})
	require.NoError(t, err)
	assert.NotEqual(t, key, fresh)

	hit, err = cache.GetCached(ctx, fresh, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_RevokeToken(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	revoked, err := cache.IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.RevokeToken(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = cache.IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = cache.IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCache_NilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	var cache *Cache

	hit, err := cache.GetCached(ctx, "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, cache.SetCached(ctx, "k", 1))
	assert.NoError(t, cache.InvalidateProperties(ctx))
	assert.NoError(t, cache.RevokeToken(ctx, "x", time.Now().Add(time.Hour)))
	assert.Error(t, cache.Ping(ctx))
}

func TestCache_LocalFallback(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil, time.Minute)
	assert.False(t, cache.Enabled())

	key, err := cache.PropertyListKey(ctx, "public", map[string]string{"type": "villa"})
	require.NoError(t, err)
	require.NotEmpty(t, key)
	require.NoError(t, cache.SetCached(ctx, key, []string{"a"}))

	var got []string
	hit, err := cache.GetCached(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, got)

	require.NoError(t, cache.InvalidateProperties(ctx))
	fresh, err := cache.PropertyListKey(ctx, "public", map[string]string{"type": "villa"})
	require.NoError(t, err)
	assert.NotEqual(t, key, fresh)

	revoked, err := cache.IsTokenRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

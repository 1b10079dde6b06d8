package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

func newTestRedisCache(t *testing.T) (*redisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	c, err := newRedisCache(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
		Redis: &config.RedisConfig{
			URL:       "redis://" + mr.Addr(),
			KeyPrefix: "scorepp:",
		},
	}, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	t.Parallel()

	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "beatmap:raw:42", []byte("osu file format v14"), time.Hour))

	got, err := c.Get(ctx, "beatmap:raw:42")
	require.NoError(t, err)
	assert.Equal(t, []byte("osu file format v14"), got)

	// The key prefix is applied on the wire.
	assert.True(t, mr.Exists("scorepp:beatmap:raw:42"))

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_TTL(t *testing.T) {
	t.Parallel()

	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), time.Hour))

	// Jitter keeps the TTL within ±10% of the requested value.
	ttl := mr.TTL("scorepp:key")
	assert.GreaterOrEqual(t, ttl, 54*time.Minute)
	assert.LessOrEqual(t, ttl, 66*time.Minute)

	mr.FastForward(2 * time.Hour)

	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DeleteExists(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), 0))

	exists, err := c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "key"))

	exists, err = c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRedisCache_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := newRedisCache(&config.CacheConfig{Enabled: true, Type: config.CacheTypeRedis}, observability.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = newRedisCache(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
		Redis:   &config.RedisConfig{URL: "not-a-url"},
	}, observability.NopLogger())
	assert.Error(t, err)
}

func TestApplyTTLJitter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), applyTTLJitter(0, 0.1))
	assert.Equal(t, time.Hour, applyTTLJitter(time.Hour, 0))

	for i := 0; i < 100; i++ {
		jittered := applyTTLJitter(time.Hour, 0.1)
		assert.GreaterOrEqual(t, jittered, 54*time.Minute)
		assert.LessOrEqual(t, jittered, 66*time.Minute)
	}
}

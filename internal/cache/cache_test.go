package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestMemoryClose(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSelectsDriver(t *testing.T) {
	c, err := New(config.CacheConfig{Driver: "memory"}, silentLog())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(config.CacheConfig{Driver: "none"}, silentLog())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	c, err = New(config.CacheConfig{Driver: "redis", RedisAddr: "localhost:6379"}, silentLog())
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)
	require.NoError(t, c.Close())
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(config.CacheConfig{RedisAddr: "redis://localhost:notaport"}, silentLog())
	assert.Error(t, err)
}

// TestRedisRoundTrip runs against a live server when WALLCRAFT_TEST_REDIS is set.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("WALLCRAFT_TEST_REDIS")
	if addr == "" {
		t.Skip("WALLCRAFT_TEST_REDIS not set")
	}
	ctx := context.Background()

	c, err := NewRedis(config.CacheConfig{RedisAddr: addr}, silentLog())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "test:key", "value", time.Minute))
	val, ok, err := c.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok, err = c.Get(ctx, "test:absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

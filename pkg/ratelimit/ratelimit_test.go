package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestFixedWindowLimiter_Allow(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "test:ip:127.0.0.1"
	limit := 5
	window := time.Minute

	// First 5 requests should be allowed
	for i := range limit {
		allowed, err := limiter.Allow(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	// 6th request should be denied
	allowed, err := limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed, "request should be denied after limit exceeded")
}

func TestFixedWindowLimiter_AllowN(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "test:batch"

	allowed, err := limiter.AllowN(ctx, key, 3, 5, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)

	// 3 + 3 > 5
	allowed, err = limiter.AllowN(ctx, key, 3, 5, time.Minute)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestFixedWindowLimiter_Reset(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "test:reset"

	for range 5 {
		_, err := limiter.Allow(ctx, key, 5, time.Minute)
		require.NoError(t, err)
	}
	allowed, err := limiter.Allow(ctx, key, 5, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, key))

	allowed, err = limiter.Allow(ctx, key, 5, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "counter should be cleared after reset")
}

func TestFixedWindowLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close() // kill the backend before the first call
	defer client.Close()

	limiter := NewFixedWindowLimiter(client, zap.NewNop(), true)

	allowed, err := limiter.Allow(context.Background(), "test:failopen", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "fail-open limiter should allow when redis is down")
}

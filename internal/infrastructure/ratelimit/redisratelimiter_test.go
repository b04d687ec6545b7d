package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLimiter(t *testing.T) *RedisRateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRateLimiter(client)
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	limiter := setupTestLimiter(t)
	ctx := context.Background()
	limit := Limit{PerMinute: 5}

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "member:1", limit)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "6th attempt should be denied")

	allowed, err = limiter.Allow(ctx, "member:2", limit)
	require.NoError(t, err)
	assert.True(t, allowed, "other keys are counted separately")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	limiter := setupTestLimiter(t)
	ctx := context.Background()
	limit := Limit{PerMinute: 2}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "member:1", limit)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	assert.False(t, allowed)

	limiter.now = func() time.Time { return base.Add(61 * time.Second) }
	allowed, err = limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_PerHour(t *testing.T) {
	limiter := setupTestLimiter(t)
	ctx := context.Background()
	limit := Limit{PerMinute: 10, PerHour: 3}

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "member:1", limit)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "4th attempt within the hour should be denied")
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	limiter := setupTestLimiter(t)
	ctx := context.Background()
	limit := Limit{PerMinute: 1}

	allowed, err := limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "member:1"))

	allowed, err = limiter.Allow(ctx, "member:1", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimit_Enabled(t *testing.T) {
	assert.False(t, Limit{}.Enabled())
	assert.True(t, Limit{PerHour: 1}.Enabled())
}

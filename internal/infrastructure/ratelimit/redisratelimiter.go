package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pecal:ratelimit:"

// RedisRateLimiter keeps one sorted set per key and window, scored by the
// attempt time in nanoseconds.
type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		now:    time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (bool, error) {
	now := l.now()
	allowed := true

	for _, w := range limit.windows() {
		if w.max <= 0 {
			continue
		}

		ok, err := l.checkWindow(ctx, key, w, now)
		if err != nil {
			return false, err
		}
		if !ok {
			allowed = false
		}
	}

	return allowed, nil
}

func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, w window, now time.Time) (bool, error) {
	redisKey := l.getKey(key, w.duration)
	windowStart := now.Add(-w.duration).UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, w.duration+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return zcard.Val() < int64(w.max), nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	keys := make([]string, 0, 2)
	for _, d := range []time.Duration{time.Minute, time.Hour} {
		keys = append(keys, l.getKey(key, d))
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for %s: %w", key, err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string, window time.Duration) string {
	return keyPrefix + identifier + ":" + window.String()
}

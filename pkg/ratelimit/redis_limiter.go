package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "surveyor:ratelimit:"

// RedisLimiter fixed window counter shared through redis. Rates below one per
// second widen the window to 1/rps with a limit of one.
type RedisLimiter struct {
	client   *redis.Client
	provider string
	window   time.Duration
	limit    int64
	now      func() time.Time
}

// NewRedisLimiter creates a shared limiter for provider
func NewRedisLimiter(client *redis.Client, provider string, rps float64) *RedisLimiter {
	window := time.Second
	limit := int64(math.Floor(rps))
	if rps < 1 {
		window = time.Duration(float64(time.Second) / rps)
		limit = 1
	}
	return &RedisLimiter{
		client:   client,
		provider: provider,
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

// Wait takes a slot in the current window, sleeping into the next window
// while the current one is exhausted
func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		now := l.now()
		slot := now.UnixNano() / int64(l.window)
		key := fmt.Sprintf("%s%s:%d", keyPrefix, l.provider, slot)

		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("rate limiter %s: %w", l.provider, err)
		}
		if incr.Val() <= l.limit {
			return nil
		}

		next := time.Unix(0, (slot+1)*int64(l.window))
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

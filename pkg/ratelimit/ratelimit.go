package ratelimit

import (
	"context"

	"surveyor/pkg/config"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may issue one provider request
type Limiter interface {
	Wait(ctx context.Context) error
}

// LocalLimiter token bucket owned by one process
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter allows rps requests per second with a burst of one
func NewLocalLimiter(rps float64) *LocalLimiter {
	return &LocalLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until a token is available or ctx is done
func (l *LocalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// ForProviders builds one limiter per provider. The redis backend shares the
// budget across every process using the same redis.
func ForProviders(cfg *config.Config, client *redis.Client) map[string]Limiter {
	limiters := make(map[string]Limiter, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if cfg.RateLimit.Backend == "redis" && client != nil {
			limiters[p.Name] = NewRedisLimiter(client, p.Name, p.RequestsPerSecond)
		} else {
			limiters[p.Name] = NewLocalLimiter(p.RequestsPerSecond)
		}
	}
	return limiters
}

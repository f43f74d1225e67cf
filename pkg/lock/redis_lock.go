package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"surveyor/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	defaultTTL      = 30 * time.Second
	acquireTimeout  = 5 * time.Second
	renewInterval   = 10 * time.Second
	maxHoldDuration = 2 * time.Minute
	releaseScript   = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
	renewScript     = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("expire", KEYS[1], ARGV[2]) else return 0 end`
)

// Locker guards a job so only one instance runs it at a time
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	IsHeld() bool
}

// RedisLock SET NX lock with a background renewal goroutine.
// With a nil client it always succeeds (single instance mode).
type RedisLock struct {
	client     *redis.Client
	key        string
	value      string // owner token, only the owner may release or renew
	ttl        time.Duration
	isHeld     bool
	acquiredAt time.Time
	stopRenew  chan struct{}
	stopped    bool
	mu         sync.Mutex
}

// NewRedisLock creates a lock on key, e.g. "surveyor:jobs:stale-sweep"
func NewRedisLock(client *redis.Client, key string) *RedisLock {
	return &RedisLock{
		client:    client,
		key:       key,
		value:     uuid.New().String(),
		ttl:       defaultTTL,
		stopRenew: make(chan struct{}),
	}
}

// TryLock attempts to take the lock without waiting
func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	if l.client == nil {
		l.mu.Lock()
		l.isHeld = true
		l.mu.Unlock()
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(acquireCtx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "lock %s held by another instance", l.key)
		return false, nil
	}

	l.mu.Lock()
	l.isHeld = true
	l.acquiredAt = time.Now()
	// a fresh channel per acquisition so TryLock/Unlock can cycle
	l.stopRenew = make(chan struct{})
	l.stopped = false
	stop := l.stopRenew
	l.mu.Unlock()

	go l.renew(ctx, stop)
	return true, nil
}

// Unlock releases the lock if this instance still owns it
func (l *RedisLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		close(l.stopRenew)
	}
	wasHeld := l.isHeld
	l.isHeld = false
	l.mu.Unlock()

	if l.client == nil {
		return nil
	}

	// the owner token makes this a no-op on a lock taken over by someone else
	result, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if wasHeld && result == 0 {
		logger.WarnCtx(ctx, "lock %s was already released or taken over", l.key)
	}
	return nil
}

// IsHeld reports whether this instance believes it holds the lock
func (l *RedisLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHeld
}

func (l *RedisLock) renew(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			held := time.Since(l.acquiredAt)
			l.mu.Unlock()

			if held > maxHoldDuration {
				logger.WarnCtx(ctx, "lock %s held for %.0fs, giving it up", l.key, held.Seconds())
				l.markLost()
				return
			}

			result, err := l.client.Eval(ctx, renewScript, []string{l.key}, l.value, int(l.ttl.Seconds())).Int64()
			if err != nil || result == 0 {
				logger.WarnCtx(ctx, "lock %s renewal failed: %v", l.key, err)
				l.markLost()
				return
			}
		}
	}
}

func (l *RedisLock) markLost() {
	l.mu.Lock()
	l.isHeld = false
	l.mu.Unlock()
}

package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"surveyor/pkg/lock"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestManager_RunsJobsUntilStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs, failures atomic.Int32
	m := NewManager(context.Background())
	m.Register(Func("tick", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	m.Register(Func("broken", 5*time.Millisecond, func(ctx context.Context) error {
		failures.Add(1)
		return errors.New("boom")
	}))
	m.Register(nil)

	m.Start()
	m.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 3 && failures.Load() >= 3 }, time.Second, time.Millisecond)
	m.Stop()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestLocked_SkipsWhenHeldElsewhere(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	holder := lock.NewRedisLock(client, "surveyor:jobs:sweep")
	acquired, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	var runs int
	job := Locked(Func("sweep", time.Minute, func(context.Context) error {
		runs++
		return nil
	}), lock.NewRedisLock(client, "surveyor:jobs:sweep"))

	require.NoError(t, job.Run(ctx))
	assert.Zero(t, runs)
	assert.Equal(t, "sweep", job.Name())

	require.NoError(t, holder.Unlock(ctx))
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, runs)
	assert.False(t, mr.Exists("surveyor:jobs:sweep"))
}

func TestLocked_NilLocker(t *testing.T) {
	job := Func("plain", time.Second, func(context.Context) error { return nil })
	assert.Same(t, job, Locked(job, nil))
}

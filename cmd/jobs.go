package main

import (
	"context"
	"time"

	"surveyor/internal/jobs"
	"surveyor/pkg/lock"
	"surveyor/pkg/logger"
)

const retryPromotionInterval = 5 * time.Second

func (app *Application) initJobs() error {
	manager := jobs.NewManager(app.ctx)

	// Without redis the locks downgrade to single-instance mode
	redisClient := app.redis()

	sweepInterval := time.Duration(app.config.Queue.SweepInterval) * time.Second

	manager.Register(jobs.Locked(
		jobs.Func("stale-sweep", sweepInterval, app.sweepStale),
		lock.NewRedisLock(redisClient, "surveyor:jobs:stale-sweep"),
	))
	manager.Register(jobs.Locked(
		jobs.Func("retry-promotion", retryPromotionInterval, app.promoteRetries),
		lock.NewRedisLock(redisClient, "surveyor:jobs:retry-promotion"),
	))
	manager.Register(jobs.Locked(
		jobs.Func("experiment-finalizer", sweepInterval, app.finalizeExperiments),
		lock.NewRedisLock(redisClient, "surveyor:jobs:experiment-finalizer"),
	))

	app.jobsManager = manager
	return nil
}

// sweepStale returns stale locked/running units to the queue
func (app *Application) sweepStale(ctx context.Context) error {
	_, _, err := app.queueService.SweepStale(ctx)
	return err
}

// promoteRetries moves retry units whose backoff has elapsed back to pending
func (app *Application) promoteRetries(ctx context.Context) error {
	n, err := app.queueService.PromoteRetries(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.DebugCtx(ctx, "promoted %d retry units", n)
	}
	return nil
}

// finalizeExperiments marks drained experiments complete
func (app *Application) finalizeExperiments(ctx context.Context) error {
	_, err := app.experimentService.FinalizeCompleted(ctx)
	return err
}

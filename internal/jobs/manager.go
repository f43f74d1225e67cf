package jobs

import (
	"context"
	"sync"
	"time"

	"surveyor/pkg/lock"
	"surveyor/pkg/logger"
)

// Job represents a periodic background task.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// funcJob adapts a function to Job
type funcJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Func builds a job from a function
func Func(name string, interval time.Duration, run func(ctx context.Context) error) Job {
	return &funcJob{name: name, interval: interval, run: run}
}

func (j *funcJob) Name() string { return j.name }

func (j *funcJob) Interval() time.Duration { return j.interval }

func (j *funcJob) Run(ctx context.Context) error { return j.run(ctx) }

// lockedJob skips a cycle when another instance holds the job's lock
type lockedJob struct {
	Job
	locker lock.Locker
}

// Locked guards job with locker so replicas do not run it concurrently
func Locked(job Job, locker lock.Locker) Job {
	if locker == nil {
		return job
	}
	return &lockedJob{Job: job, locker: locker}
}

func (j *lockedJob) Run(ctx context.Context) error {
	acquired, err := j.locker.TryLock(ctx)
	if err != nil || !acquired {
		logger.DebugCtx(ctx, "another instance is running %s, skipping this cycle", j.Name())
		return nil
	}
	defer func() {
		if err := j.locker.Unlock(ctx); err != nil {
			logger.WarnCtx(ctx, "failed to release %s lock: %v", j.Name(), err)
		}
	}()
	return j.Job.Run(ctx)
}

// Manager orchestrates the lifecycle of background jobs.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    []Job
	started bool

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewManager creates a job manager bound to the provided context.
func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a job to the manager.
func (m *Manager) Register(job Job) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

// Start launches all registered jobs. Each job runs once immediately and
// then on its interval.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	jobs := append([]Job(nil), m.jobs...)
	m.mu.Unlock()

	for _, job := range jobs {
		m.wg.Add(1)
		go m.runJob(job)
	}
}

// Stop signals all jobs to stop and waits for them to exit.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) runJob(job Job) {
	defer m.wg.Done()

	interval := job.Interval()
	if interval <= 0 {
		interval = time.Minute
	}

	m.executeJob(job)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.executeJob(job)
		}
	}
}

func (m *Manager) executeJob(job Job) {
	ctx := logger.WithTrace(m.ctx, "job/"+job.Name())
	if err := job.Run(ctx); err != nil && m.ctx.Err() == nil {
		logger.WarnCtx(ctx, "background job %s failed: %v", job.Name(), err)
	}
}

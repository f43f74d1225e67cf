package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/service"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	"surveyor/pkg/provider"
	"surveyor/pkg/ratelimit"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Dispatcher runs one claim loop per configured provider. Loops share
// nothing but the queue, so a slow or failing provider never blocks another.
type Dispatcher struct {
	queue       *service.QueueService
	instruments *instrument.Registry
	encoders    *encoding.Registry
	loops       []*providerLoop

	pollInterval time.Duration
	callTimeout  time.Duration

	mu         sync.Mutex
	running    bool
	stopLoops  context.CancelFunc
	cancelWork context.CancelFunc
	done       chan error
}

// New builds a dispatcher. Every provider needs a client and a limiter keyed
// by its name.
func New(
	cfg config.DispatcherConfig,
	providers []config.ProviderConfig,
	queue *service.QueueService,
	instruments *instrument.Registry,
	encoders *encoding.Registry,
	clients map[string]provider.Client,
	limiters map[string]ratelimit.Limiter,
) (*Dispatcher, error) {
	d := &Dispatcher{
		queue:        queue,
		instruments:  instruments,
		encoders:     encoders,
		pollInterval: time.Duration(cfg.PollInterval) * time.Millisecond,
		callTimeout:  time.Duration(cfg.CallTimeout) * time.Second,
	}

	for _, p := range providers {
		client, ok := clients[p.Name]
		if !ok {
			return nil, fmt.Errorf("no client for provider %s", p.Name)
		}
		limiter, ok := limiters[p.Name]
		if !ok {
			return nil, fmt.Errorf("no rate limiter for provider %s", p.Name)
		}
		d.loops = append(d.loops, &providerLoop{
			d:        d,
			cfg:      p,
			client:   client,
			limiter:  limiter,
			slots:    semaphore.NewWeighted(int64(p.MaxConcurrent)),
			workerID: fmt.Sprintf("%s-%s-%s", cfg.WorkerPrefix, p.Name, uuid.New().String()[:8]),
		})
	}
	return d, nil
}

// Start launches the provider loops in the background
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true

	// units keep running after the loops stop until Stop's deadline passes
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	loopCtx, stopLoops := context.WithCancel(ctx)
	d.stopLoops = stopLoops
	d.cancelWork = cancelWork
	d.done = make(chan error, 1)

	group := &errgroup.Group{}
	for _, loop := range d.loops {
		group.Go(func() error {
			return loop.run(loopCtx, workCtx)
		})
	}
	go func() {
		d.done <- group.Wait()
	}()

	logger.InfoCtx(ctx, "dispatcher started with %d provider loops", len(d.loops))
}

// Stop stops claiming and waits for in-flight units. When ctx expires first,
// in-flight provider calls are cancelled and their attempts fail.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	d.stopLoops()
	defer d.cancelWork()

	select {
	case err := <-d.done:
		logger.InfoCtx(ctx, "dispatcher stopped")
		return err
	case <-ctx.Done():
		logger.WarnCtx(ctx, "dispatcher stop deadline reached, cancelling in-flight units")
		d.cancelWork()
		return <-d.done
	}
}

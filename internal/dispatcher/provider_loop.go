package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/internal/scoring"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	"surveyor/pkg/metrics"
	"surveyor/pkg/provider"
	"surveyor/pkg/ratelimit"
	"surveyor/pkg/store/mysql"

	"golang.org/x/sync/semaphore"
)

// providerLoop claims and executes the units of one provider. slots caps the
// provider's in-flight units at max_concurrent.
type providerLoop struct {
	d        *Dispatcher
	cfg      config.ProviderConfig
	client   provider.Client
	limiter  ratelimit.Limiter
	slots    *semaphore.Weighted
	workerID string
	inFlight sync.WaitGroup
}

func (l *providerLoop) run(loopCtx, workCtx context.Context) error {
	ctx := logger.WithTrace(loopCtx, l.workerID)
	logger.InfoCtx(ctx, "provider loop started, provider: %s, max_concurrent: %d", l.cfg.Name, l.cfg.MaxConcurrent)
	defer l.inFlight.Wait()

	for {
		if err := l.slots.Acquire(ctx, 1); err != nil {
			logger.InfoCtx(ctx, "provider loop stopping, provider: %s", l.cfg.Name)
			return nil
		}

		unit, err := l.claim(ctx)
		if err != nil && ctx.Err() == nil {
			logger.ErrorCtx(ctx, "claim failed: %v", err)
		}
		if unit == nil {
			l.slots.Release(1)
			select {
			case <-ctx.Done():
			case <-time.After(l.d.pollInterval):
			}
			continue
		}

		l.inFlight.Add(1)
		go func() {
			defer l.inFlight.Done()
			defer l.slots.Release(1)
			l.execute(loopCtx, workCtx, unit)
		}()
	}
}

func (l *providerLoop) claim(ctx context.Context) (*mysql.WorkUnit, error) {
	if _, err := l.d.queue.PromoteRetries(ctx); err != nil {
		logger.WarnCtx(ctx, "failed to promote retries: %v", err)
	}
	return l.d.queue.Claim(ctx, l.cfg.Name, l.workerID)
}

// execute runs every item of a claimed unit. A unit claimed while the loop is
// shutting down is released without charging an attempt.
func (l *providerLoop) execute(loopCtx, workCtx context.Context, unit *mysql.WorkUnit) {
	ctx := logger.WithTrace(workCtx, fmt.Sprintf("%s/unit-%d", l.workerID, unit.ID))

	if loopCtx.Err() != nil {
		if err := l.d.queue.Release(ctx, unit); err != nil {
			logger.WarnCtx(ctx, "failed to release unit on shutdown: %v", err)
		}
		return
	}

	snapshot := mysql.SnapshotOf(unit)
	inst, instOK := l.d.instruments.Get(snapshot.Instrument)
	enc, encOK := l.d.encoders.Get(snapshot.Encoding)

	system := ""
	if instOK && encOK {
		system = encoding.SystemPrompt(enc, snapshot.Profile.Traits, inst)
	}
	if err := l.d.queue.Begin(ctx, unit, system); err != nil {
		logger.WarnCtx(ctx, "failed to begin unit: %v", err)
		return
	}

	metrics.InFlight.WithLabelValues(l.cfg.Name).Inc()
	defer metrics.InFlight.WithLabelValues(l.cfg.Name).Dec()

	var err error
	switch {
	case !instOK:
		err = fmt.Errorf("%w: %s", model.ErrUnknownInstrument, snapshot.Instrument)
	case !encOK:
		err = fmt.Errorf("%w: %s", model.ErrUnknownEncoding, snapshot.Encoding)
	default:
		err = l.administer(ctx, unit, inst, system, snapshot.Longitudinal)
	}
	if err != nil {
		l.fail(ctx, unit, err)
	}
}

// administer asks every item in order, then scores and completes the unit
func (l *providerLoop) administer(ctx context.Context, unit *mysql.WorkUnit, inst *instrument.Instrument, system string, longitudinal bool) error {
	start := time.Now()
	responses := make([]model.ItemResponse, 0, len(inst.Items))
	var conversation []provider.Turn

	for i, item := range inst.Items {
		if err := l.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		prompt := encoding.ItemPrompt(item, inst.Scale)
		req := provider.Request{
			System:      system,
			Prompt:      prompt,
			MaxTokens:   l.cfg.MaxTokens,
			Temperature: l.cfg.SamplingTemperature(),
		}
		if longitudinal {
			req.Context = conversation
		}

		completion, err := l.invoke(ctx, req)
		if err != nil {
			return fmt.Errorf("item %d: %w", item.Number, err)
		}

		resp := scoring.ScoreItem(inst, item, completion.Text)
		resp.ResponseTimeMs = completion.Latency.Milliseconds()
		if resp.ParsedScore == nil {
			metrics.UnparsedResponses.WithLabelValues(l.cfg.Name, inst.ShortName).Inc()
			logger.WarnCtx(ctx, "item %d: no score in response %q", item.Number, completion.Text)
		}
		if longitudinal {
			position := i + 1
			resp.SequencePosition = &position
			resp.PromptTokens = completion.PromptTokens
			conversation = append(conversation,
				provider.Turn{Role: provider.RoleUser, Content: prompt},
				provider.Turn{Role: provider.RoleAssistant, Content: completion.Text})
		}
		responses = append(responses, resp)

		if err := l.d.queue.Heartbeat(ctx, unit); err != nil {
			return err
		}
	}

	result := scoring.ScoreResponses(inst, responses)
	result.DurationMs = time.Since(start).Milliseconds()
	if err := l.d.queue.Complete(ctx, unit, responses, result); err != nil {
		if errors.Is(err, mysql.ErrTransitionLost) {
			logger.WarnCtx(ctx, "unit was reclaimed before completion, result discarded")
			return nil
		}
		return err
	}

	logger.InfoCtx(ctx, "unit complete, answered %d/%d in %dms",
		result.QuestionsAnswered, result.QuestionsTotal, result.DurationMs)
	return nil
}

func (l *providerLoop) invoke(ctx context.Context, req provider.Request) (*provider.Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, l.d.callTimeout)
	defer cancel()

	start := time.Now()
	completion, err := l.client.Invoke(callCtx, req)
	metrics.InvocationDuration.WithLabelValues(l.cfg.Name).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case errors.Is(err, provider.ErrRateLimited):
		outcome = "rate_limited"
	case err != nil:
		outcome = "error"
	}
	metrics.Invocations.WithLabelValues(l.cfg.Name, outcome).Inc()
	return completion, err
}

func (l *providerLoop) fail(ctx context.Context, unit *mysql.WorkUnit, cause error) {
	if _, err := l.d.queue.Fail(ctx, unit, cause); err != nil {
		if errors.Is(err, mysql.ErrTransitionLost) {
			logger.WarnCtx(ctx, "unit was reclaimed before its failure was recorded: %v", cause)
			return
		}
		logger.ErrorCtx(ctx, "failed to record unit failure: %v (cause: %v)", err, cause)
	}
}

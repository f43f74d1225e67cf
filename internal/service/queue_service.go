package service

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"surveyor/internal/model"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	"surveyor/pkg/metrics"
	"surveyor/pkg/status"
	"surveyor/pkg/store/mysql"
)

// maxErrorMessage bounds error_message to fit the column
const maxErrorMessage = 1000

// QueueService drives work units through the queue protocol and applies the
// retry policy on top of the repository's compare-and-swap transitions
type QueueService struct {
	workUnitRepo   *mysql.WorkUnitRepository
	experimentRepo *mysql.ExperimentRepository
	cfg            config.QueueConfig
	sanitizer      *status.StatusSanitizer
	jitter         func() float64
}

// NewQueueService creates a new queue service
func NewQueueService(repo *mysql.Repository, cfg config.QueueConfig) *QueueService {
	return &QueueService{
		workUnitRepo:   repo.WorkUnit,
		experimentRepo: repo.Experiment,
		cfg:            cfg,
		sanitizer:      status.NewStatusSanitizer(maxErrorMessage),
		jitter:         rand.Float64,
	}
}

// MaxAttempts returns the configured attempt budget per unit
func (s *QueueService) MaxAttempts() int {
	return s.cfg.MaxAttempts
}

// Backoff returns the delay before attempt+1 may start:
// base * 2^(attempt-1), capped, with symmetric jitter
func (s *QueueService) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(time.Duration(s.cfg.BackoffBase) * time.Millisecond)
	limit := float64(time.Duration(s.cfg.BackoffMax) * time.Millisecond)

	backoff := base * math.Pow(2, float64(attempt-1))
	if backoff > limit {
		backoff = limit
	}
	if s.cfg.BackoffJitter > 0 {
		backoff += backoff * s.cfg.BackoffJitter * (s.jitter()*2 - 1)
	}
	if backoff < 0 {
		backoff = 0
	}
	return time.Duration(backoff)
}

// Claim locks the next eligible unit of provider for workerID. Later calls on
// the returned unit act under its claim token (unit.WorkerID), so a stale
// holder of an earlier claim cannot touch it.
// Returns (nil, nil) when the provider has nothing to do.
func (s *QueueService) Claim(ctx context.Context, provider, workerID string) (*mysql.WorkUnit, error) {
	unit, err := s.workUnitRepo.Claim(ctx, provider, workerID)
	if err != nil || unit == nil {
		return nil, err
	}
	metrics.UnitsClaimed.WithLabelValues(provider).Inc()

	// first claim starts the experiment
	err = s.experimentRepo.UpdateStatus(ctx, unit.ExperimentID,
		[]model.ExperimentStatus{model.ExperimentStatusCreated}, model.ExperimentStatusRunning)
	if err == nil {
		logger.InfoCtx(ctx, "experiment %d started", unit.ExperimentID)
	} else if !errors.Is(err, mysql.ErrTransitionLost) {
		logger.WarnCtx(ctx, "failed to mark experiment %d running: %v", unit.ExperimentID, err)
	}
	return unit, nil
}

// Begin moves a claimed unit to running and mirrors the attempt charge on unit
func (s *QueueService) Begin(ctx context.Context, unit *mysql.WorkUnit, prompt string) error {
	if err := s.workUnitRepo.Begin(ctx, unit.ID, unit.WorkerID, prompt); err != nil {
		return err
	}
	unit.Attempts++
	unit.Status = string(model.WorkUnitStatusRunning)
	return nil
}

// Heartbeat refreshes the unit's liveness stamp
func (s *QueueService) Heartbeat(ctx context.Context, unit *mysql.WorkUnit) error {
	return s.workUnitRepo.Heartbeat(ctx, unit.ID, unit.WorkerID)
}

// Complete stores the scored responses and the result and finishes the unit
func (s *QueueService) Complete(ctx context.Context, unit *mysql.WorkUnit, responses []model.ItemResponse, result model.UnitResult) error {
	rows := make([]*mysql.Response, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, mysql.FromItemResponse(r))
	}
	if err := s.workUnitRepo.Complete(ctx, unit.ID, unit.WorkerID, rows, mysql.FromUnitResult(result)); err != nil {
		return err
	}
	metrics.UnitsFinished.WithLabelValues(unit.Provider, string(model.WorkUnitStatusComplete)).Inc()
	return nil
}

// Fail records a failed attempt and schedules a retry with backoff, or fails
// the unit permanently once its attempts are exhausted
func (s *QueueService) Fail(ctx context.Context, unit *mysql.WorkUnit, cause error) (model.WorkUnitStatus, error) {
	msg := s.sanitizer.Sanitize(cause.Error())

	retryAt := time.Now().UTC().Add(s.Backoff(unit.Attempts))
	next, err := s.workUnitRepo.Fail(ctx, unit.ID, unit.WorkerID, msg, s.cfg.MaxAttempts, retryAt)
	if err != nil {
		return "", err
	}
	metrics.UnitsFinished.WithLabelValues(unit.Provider, string(next)).Inc()

	if next == model.WorkUnitStatusRetry {
		logger.WarnCtx(ctx, "work unit %d attempt %d/%d failed, retry at %s: %s",
			unit.ID, unit.Attempts, s.cfg.MaxAttempts, retryAt.Format(time.RFC3339), msg)
	} else {
		logger.ErrorCtx(ctx, "work unit %d failed after %d attempts: %s", unit.ID, unit.Attempts, msg)
	}
	return next, nil
}

// Release hands a claimed but unstarted unit back to the queue
func (s *QueueService) Release(ctx context.Context, unit *mysql.WorkUnit) error {
	return s.workUnitRepo.Release(ctx, unit.ID, unit.WorkerID)
}

// PromoteRetries makes retry units whose backoff elapsed claimable again
func (s *QueueService) PromoteRetries(ctx context.Context) (int64, error) {
	return s.workUnitRepo.PromoteRetries(ctx, time.Now().UTC())
}

// SweepStale reclaims locked/running units that missed their heartbeat
func (s *QueueService) SweepStale(ctx context.Context) (requeued, failed int64, err error) {
	cutoff := time.Now().UTC().Add(-s.cfg.StaleAfterDuration())
	requeued, failed, err = s.workUnitRepo.SweepStale(ctx, cutoff, s.cfg.MaxAttempts)
	if err != nil {
		return requeued, failed, err
	}

	if requeued > 0 {
		metrics.StaleRecovered.WithLabelValues(string(model.WorkUnitStatusPending)).Add(float64(requeued))
	}
	if failed > 0 {
		metrics.StaleRecovered.WithLabelValues(string(model.WorkUnitStatusFailed)).Add(float64(failed))
	}
	if requeued+failed > 0 {
		logger.WarnCtx(ctx, "stale sweep reclaimed work units, requeued: %d, failed: %d", requeued, failed)
	}
	return requeued, failed, nil
}

// InFlight returns locked+running depth per provider
func (s *QueueService) InFlight(ctx context.Context) (map[string]int64, error) {
	return s.workUnitRepo.InFlightByProvider(ctx)
}

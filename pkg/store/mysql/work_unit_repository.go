package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveyor/internal/model"
	"surveyor/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTransitionLost a compare-and-swap found the row in an unexpected state
var ErrTransitionLost = errors.New("work unit status changed concurrently")

// claimCandidates bounds how many pending IDs a single claim inspects
const claimCandidates = 16

// WorkUnitRepository is the durable job queue. Every status change is a
// compare-and-swap on (id, expected status[, claim token]).
type WorkUnitRepository struct {
	ds *Datastore
}

// NewWorkUnitRepository creates a new work unit repository
func NewWorkUnitRepository(ds *Datastore) *WorkUnitRepository {
	return &WorkUnitRepository{ds: ds}
}

// BulkCreate inserts expanded work units in batches
func (r *WorkUnitRepository) BulkCreate(ctx context.Context, units []*WorkUnit) error {
	if len(units) == 0 {
		return nil
	}
	now := r.ds.Now()
	for _, u := range units {
		u.Status = string(model.WorkUnitStatusPending)
		u.CreatedAt = now
		u.AvailableAt = now
	}
	if err := r.ds.DB(ctx).CreateInBatches(units, 500).Error; err != nil {
		return fmt.Errorf("failed to create work units: %w", err)
	}
	return nil
}

// Get retrieves a work unit by ID
func (r *WorkUnitRepository) Get(ctx context.Context, id int64) (*WorkUnit, error) {
	var unit WorkUnit
	err := r.ds.DB(ctx).Where("id = ?", id).First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work unit: %w", err)
	}
	return &unit, nil
}

// CountByExperiment counts all work units of an experiment
func (r *WorkUnitRepository) CountByExperiment(ctx context.Context, experimentID int64) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Model(&WorkUnit{}).Where("experiment_id = ?", experimentID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count work units: %w", err)
	}
	return count, nil
}

// CountByStatus counts an experiment's work units per status
func (r *WorkUnitRepository) CountByStatus(ctx context.Context, experimentID int64) (model.StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	var counts model.StatusCounts

	err := r.ds.DB(ctx).Model(&WorkUnit{}).
		Select("status, COUNT(*) AS count").
		Where("experiment_id = ?", experimentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, fmt.Errorf("failed to count work units by status: %w", err)
	}

	for _, row := range rows {
		counts.Add(model.WorkUnitStatus(row.Status), row.Count)
	}
	return counts, nil
}

// ListByExperiment lists an experiment's units, optionally filtered by status
func (r *WorkUnitRepository) ListByExperiment(ctx context.Context, experimentID int64, status string, limit, offset int) ([]*WorkUnit, error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.ds.DB(ctx).Where("experiment_id = ?", experimentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var units []*WorkUnit
	err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list work units: %w", err)
	}
	return units, nil
}

// cancelledExperiments subquery of experiment IDs whose pending units must not be claimed
func (r *WorkUnitRepository) cancelledExperiments(ctx context.Context) *gorm.DB {
	return r.ds.DB(ctx).Model(&Experiment{}).
		Select("id").
		Where("status = ?", string(model.ExperimentStatusCancelled))
}

// Claim atomically moves one eligible pending unit of provider to locked.
// Candidates are read in id order; a lost CAS moves on to the next candidate.
// The returned unit's WorkerID is a claim token (workerID plus a random
// suffix) that every later transition of this claim must present.
// Returns (nil, nil) when no unit is eligible.
func (r *WorkUnitRepository) Claim(ctx context.Context, provider, workerID string) (*WorkUnit, error) {
	now := r.ds.Now()
	token := workerID + "/" + uuid.NewString()

	var ids []int64
	err := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("provider = ? AND status = ? AND available_at <= ?", provider, string(model.WorkUnitStatusPending), now).
		Where("experiment_id NOT IN (?)", r.cancelledExperiments(ctx)).
		Order("id ASC").
		Limit(claimCandidates).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select claim candidates: %w", err)
	}

	for _, id := range ids {
		result := r.ds.DB(ctx).Model(&WorkUnit{}).
			Where("id = ? AND status = ?", id, string(model.WorkUnitStatusPending)).
			Where("experiment_id NOT IN (?)", r.cancelledExperiments(ctx)).
			Updates(map[string]interface{}{
				"status":       string(model.WorkUnitStatusLocked),
				"worker_id":    token,
				"locked_at":    now,
				"heartbeat_at": now,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to claim work unit %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			metrics.ClaimRacesLost.WithLabelValues(provider).Inc()
			continue
		}

		unit, err := r.Get(ctx, id)
		if err == nil && unit == nil {
			err = fmt.Errorf("work unit %d vanished after claim", id)
		}
		if err != nil {
			// hand the unit back instead of leaving it locked until the stale sweep
			if relErr := r.Release(context.WithoutCancel(ctx), id, token); relErr != nil {
				return nil, fmt.Errorf("failed to read claimed work unit %d: %w (release: %v)", id, err, relErr)
			}
			return nil, fmt.Errorf("failed to read claimed work unit %d: %w", id, err)
		}
		return unit, nil
	}
	return nil, nil
}

// casUpdate applies updates only when the unit is in fromStatus and still held by claimToken
func (r *WorkUnitRepository) casUpdate(ctx context.Context, id int64, claimToken string, fromStatus model.WorkUnitStatus, updates map[string]interface{}) error {
	result := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("id = ? AND status = ? AND worker_id = ?", id, string(fromStatus), claimToken).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update work unit %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: work_unit_id=%d, expected=%s, token=%s", ErrTransitionLost, id, fromStatus, claimToken)
	}
	return nil
}

// Begin moves locked -> running and charges one attempt
func (r *WorkUnitRepository) Begin(ctx context.Context, id int64, claimToken, prompt string) error {
	now := r.ds.Now()
	return r.casUpdate(ctx, id, claimToken, model.WorkUnitStatusLocked, map[string]interface{}{
		"status":       string(model.WorkUnitStatusRunning),
		"attempts":     gorm.Expr("attempts + 1"),
		"prompt_sent":  prompt,
		"started_at":   now,
		"heartbeat_at": now,
	})
}

// Heartbeat refreshes heartbeat_at while the unit is locked or running
func (r *WorkUnitRepository) Heartbeat(ctx context.Context, id int64, claimToken string) error {
	result := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("id = ? AND worker_id = ? AND status IN ?", id, claimToken,
			[]string{string(model.WorkUnitStatusLocked), string(model.WorkUnitStatusRunning)}).
		Update("heartbeat_at", r.ds.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to heartbeat work unit %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: heartbeat work_unit_id=%d, token=%s", ErrTransitionLost, id, claimToken)
	}
	return nil
}

// Complete moves running -> complete and stores the responses and the result in
// the same transaction, so a unit never gets a second result
func (r *WorkUnitRepository) Complete(ctx context.Context, id int64, claimToken string, responses []*Response, result *Result) error {
	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		now := r.ds.Now()
		err := r.casUpdate(txCtx, id, claimToken, model.WorkUnitStatusRunning, map[string]interface{}{
			"status":        string(model.WorkUnitStatusComplete),
			"completed_at":  now,
			"error_message": "",
		})
		if err != nil {
			return err
		}

		for _, resp := range responses {
			resp.WorkUnitID = id
			resp.CreatedAt = now
		}
		if len(responses) > 0 {
			if err := r.ds.DB(txCtx).Create(responses).Error; err != nil {
				return fmt.Errorf("failed to insert responses for work unit %d: %w", id, err)
			}
		}

		result.WorkUnitID = id
		result.CreatedAt = now
		if err := r.ds.DB(txCtx).Create(result).Error; err != nil {
			return fmt.Errorf("failed to insert result for work unit %d: %w", id, err)
		}
		return nil
	})
}

// Fail records a failed attempt: running -> retry while attempts < maxAttempts
// (eligible again at retryAt), otherwise running -> failed.
// Returns the status the unit ended in.
func (r *WorkUnitRepository) Fail(ctx context.Context, id int64, claimToken, errMsg string, maxAttempts int, retryAt time.Time) (model.WorkUnitStatus, error) {
	result := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("id = ? AND status = ? AND worker_id = ? AND attempts < ?", id, string(model.WorkUnitStatusRunning), claimToken, maxAttempts).
		Updates(map[string]interface{}{
			"status":        string(model.WorkUnitStatusRetry),
			"worker_id":     "",
			"error_message": errMsg,
			"available_at":  retryAt,
			"locked_at":     nil,
			"heartbeat_at":  nil,
		})
	if result.Error != nil {
		return "", fmt.Errorf("failed to mark work unit %d for retry: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return model.WorkUnitStatusRetry, nil
	}

	result = r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("id = ? AND status = ? AND worker_id = ? AND attempts >= ?", id, string(model.WorkUnitStatusRunning), claimToken, maxAttempts).
		Updates(map[string]interface{}{
			"status":        string(model.WorkUnitStatusFailed),
			"worker_id":     "",
			"error_message": errMsg,
			"completed_at":  r.ds.Now(),
			"heartbeat_at":  nil,
		})
	if result.Error != nil {
		return "", fmt.Errorf("failed to mark work unit %d failed: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return "", fmt.Errorf("%w: fail work_unit_id=%d, token=%s", ErrTransitionLost, id, claimToken)
	}
	return model.WorkUnitStatusFailed, nil
}

// Release returns a claimed but not started unit to pending without charging an attempt
func (r *WorkUnitRepository) Release(ctx context.Context, id int64, claimToken string) error {
	return r.casUpdate(ctx, id, claimToken, model.WorkUnitStatusLocked, map[string]interface{}{
		"status":       string(model.WorkUnitStatusPending),
		"worker_id":    "",
		"locked_at":    nil,
		"heartbeat_at": nil,
	})
}

// PromoteRetries moves retry -> pending for units whose backoff has elapsed
func (r *WorkUnitRepository) PromoteRetries(ctx context.Context, now time.Time) (int64, error) {
	result := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("status = ? AND available_at <= ?", string(model.WorkUnitStatusRetry), now).
		Update("status", string(model.WorkUnitStatusPending))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to promote retries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SweepStale resets locked/running units whose heartbeat is older than cutoff.
// Each reset charges an attempt; units reaching maxAttempts become failed.
func (r *WorkUnitRepository) SweepStale(ctx context.Context, cutoff time.Time, maxAttempts int) (requeued, failed int64, err error) {
	active := []string{string(model.WorkUnitStatusLocked), string(model.WorkUnitStatusRunning)}
	now := r.ds.Now()

	result := r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("status IN ? AND heartbeat_at < ? AND attempts + 1 < ?", active, cutoff, maxAttempts).
		Updates(map[string]interface{}{
			"status":        string(model.WorkUnitStatusPending),
			"attempts":      gorm.Expr("attempts + 1"),
			"worker_id":     "",
			"error_message": "reclaimed after missed heartbeat",
			"available_at":  now,
			"locked_at":     nil,
			"heartbeat_at":  nil,
		})
	if result.Error != nil {
		return 0, 0, fmt.Errorf("failed to requeue stale work units: %w", result.Error)
	}
	requeued = result.RowsAffected

	result = r.ds.DB(ctx).Model(&WorkUnit{}).
		Where("status IN ? AND heartbeat_at < ? AND attempts + 1 >= ?", active, cutoff, maxAttempts).
		Updates(map[string]interface{}{
			"status":        string(model.WorkUnitStatusFailed),
			"attempts":      gorm.Expr("attempts + 1"),
			"worker_id":     "",
			"error_message": "reclaimed after missed heartbeat, attempts exhausted",
			"completed_at":  now,
			"heartbeat_at":  nil,
		})
	if result.Error != nil {
		return requeued, 0, fmt.Errorf("failed to fail stale work units: %w", result.Error)
	}
	return requeued, result.RowsAffected, nil
}

// InFlightByProvider counts locked and running units per provider
func (r *WorkUnitRepository) InFlightByProvider(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Provider string
		Count    int64
	}
	err := r.ds.DB(ctx).Model(&WorkUnit{}).
		Select("provider, COUNT(*) AS count").
		Where("status IN ?", []string{string(model.WorkUnitStatusLocked), string(model.WorkUnitStatusRunning)}).
		Group("provider").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count in-flight work units: %w", err)
	}

	depths := make(map[string]int64, len(rows))
	for _, row := range rows {
		depths[row.Provider] = row.Count
	}
	return depths, nil
}

package mysql

import (
	"context"
	"errors"
	"fmt"

	"surveyor/internal/model"

	"gorm.io/gorm"
)

// ExperimentRepository handles experiments and their design cells
type ExperimentRepository struct {
	ds *Datastore
}

// NewExperimentRepository creates a new experiment repository
func NewExperimentRepository(ds *Datastore) *ExperimentRepository {
	return &ExperimentRepository{ds: ds}
}

// Create inserts an experiment with its configs and assigns the next experiment number
func (r *ExperimentRepository) Create(ctx context.Context, experiment *Experiment, configs []*ExperimentConfig) error {
	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		var maxNumber int
		err := r.ds.DB(txCtx).Model(&Experiment{}).
			Select("COALESCE(MAX(experiment_number), 0)").
			Row().Scan(&maxNumber)
		if err != nil {
			return fmt.Errorf("failed to read experiment number: %w", err)
		}

		now := r.ds.Now()
		experiment.Number = maxNumber + 1
		experiment.Status = string(model.ExperimentStatusCreated)
		experiment.CreatedAt = now

		if err := r.ds.DB(txCtx).Omit("ProfileSet").Create(experiment).Error; err != nil {
			return fmt.Errorf("failed to create experiment: %w", err)
		}

		if len(configs) == 0 {
			return nil
		}
		for _, c := range configs {
			c.ExperimentID = experiment.ID
			c.CreatedAt = now
		}
		if err := r.ds.DB(txCtx).Create(configs).Error; err != nil {
			return fmt.Errorf("failed to create experiment configs: %w", err)
		}
		return nil
	})
}

// Get retrieves an experiment with its profile set (without profiles)
func (r *ExperimentRepository) Get(ctx context.Context, id int64) (*Experiment, error) {
	var experiment Experiment
	err := r.ds.DB(ctx).Preload("ProfileSet").Where("id = ?", id).First(&experiment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return &experiment, nil
}

// List retrieves experiments newest first
func (r *ExperimentRepository) List(ctx context.Context, limit, offset int) ([]*Experiment, error) {
	if limit <= 0 {
		limit = 100
	}

	var experiments []*Experiment
	err := r.ds.DB(ctx).
		Preload("ProfileSet").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&experiments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	return experiments, nil
}

// ListByStatus retrieves experiment IDs in the given status
func (r *ExperimentRepository) ListByStatus(ctx context.Context, status model.ExperimentStatus) ([]int64, error) {
	var ids []int64
	err := r.ds.DB(ctx).Model(&Experiment{}).
		Where("status = ?", string(status)).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments by status: %w", err)
	}
	return ids, nil
}

// ListConfigs returns the design cells of an experiment in insertion order
func (r *ExperimentRepository) ListConfigs(ctx context.Context, experimentID int64) ([]*ExperimentConfig, error) {
	var configs []*ExperimentConfig
	err := r.ds.DB(ctx).
		Where("experiment_id = ?", experimentID).
		Order("id ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list experiment configs: %w", err)
	}
	return configs, nil
}

// UpdateStatus moves an experiment between statuses with CAS on the current status
// Returns ErrTransitionLost if the experiment is not in one of fromStatuses
func (r *ExperimentRepository) UpdateStatus(ctx context.Context, id int64, fromStatuses []model.ExperimentStatus, toStatus model.ExperimentStatus) error {
	from := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		from[i] = string(s)
	}

	updates := map[string]interface{}{"status": string(toStatus)}
	now := r.ds.Now()
	switch toStatus {
	case model.ExperimentStatusRunning:
		updates["started_at"] = now
	case model.ExperimentStatusComplete:
		updates["completed_at"] = now
	case model.ExperimentStatusCancelled:
		updates["cancelled_at"] = now
	}

	result := r.ds.DB(ctx).Model(&Experiment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update experiment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: experiment_id=%d, from=%v, to=%s", ErrTransitionLost, id, from, toStatus)
	}
	return nil
}

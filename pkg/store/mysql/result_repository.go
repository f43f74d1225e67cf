package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ResultRepository reads responses and results. Both are written only by
// WorkUnitRepository.Complete.
type ResultRepository struct {
	ds *Datastore
}

// NewResultRepository creates a new result repository
func NewResultRepository(ds *Datastore) *ResultRepository {
	return &ResultRepository{ds: ds}
}

// GetByWorkUnit retrieves the result of a work unit
func (r *ResultRepository) GetByWorkUnit(ctx context.Context, workUnitID int64) (*Result, error) {
	var result Result
	err := r.ds.DB(ctx).Where("work_unit_id = ?", workUnitID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &result, nil
}

// ListResponses returns a work unit's responses in question order
func (r *ResultRepository) ListResponses(ctx context.Context, workUnitID int64) ([]*Response, error) {
	var responses []*Response
	err := r.ds.DB(ctx).
		Where("work_unit_id = ?", workUnitID).
		Order("question_number ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// CountResults counts results of an experiment
func (r *ResultRepository) CountResults(ctx context.Context, experimentID int64) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Table("results AS r").
		Joins("JOIN work_units AS w ON w.id = r.work_unit_id").
		Where("w.experiment_id = ?", experimentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

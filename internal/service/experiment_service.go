package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveyor/internal/model"
	"surveyor/pkg/logger"
	"surveyor/pkg/notification"
	"surveyor/pkg/store/mysql"
)

// FinishNotifier is told about experiments the finalizer completes
type FinishNotifier interface {
	SendExperimentFinished(ctx context.Context, n *notification.ExperimentFinished) error
}

// ExperimentService reports experiment progress and drives its lifecycle
type ExperimentService struct {
	experimentRepo *mysql.ExperimentRepository
	workUnitRepo   *mysql.WorkUnitRepository
	resultRepo     *mysql.ResultRepository
	notifier       FinishNotifier
}

// NewExperimentService creates a new experiment service
func NewExperimentService(repo *mysql.Repository) *ExperimentService {
	return &ExperimentService{
		experimentRepo: repo.Experiment,
		workUnitRepo:   repo.WorkUnit,
		resultRepo:     repo.Result,
	}
}

// SetNotifier registers a notifier for finalized experiments
func (s *ExperimentService) SetNotifier(n FinishNotifier) {
	s.notifier = n
}

// UnitDetail a work unit with its responses and result
type UnitDetail struct {
	Unit      *model.WorkUnit   `json:"unit"`
	Responses []*mysql.Response `json:"responses"`
	Result    *mysql.Result     `json:"result,omitempty"`
}

// GetSummary returns the experiment with work unit counts per status
func (s *ExperimentService) GetSummary(ctx context.Context, id int64) (*model.ExperimentSummary, error) {
	experiment, err := s.experimentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if experiment == nil {
		return nil, fmt.Errorf("%w: %d", model.ErrExperimentNotFound, id)
	}

	configs, err := s.experimentRepo.ListConfigs(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.workUnitRepo.CountByStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.ExperimentSummary{
		Experiment: mysql.ToExperimentDomain(experiment, configs),
		Counts:     counts,
		Total:      counts.Total(),
	}, nil
}

// List returns experiments newest first
func (s *ExperimentService) List(ctx context.Context, limit, offset int) ([]*model.Experiment, error) {
	experiments, err := s.experimentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Experiment, 0, len(experiments))
	for _, e := range experiments {
		out = append(out, mysql.ToExperimentDomain(e, nil))
	}
	return out, nil
}

// ListUnits returns an experiment's work units, optionally of one status
func (s *ExperimentService) ListUnits(ctx context.Context, id int64, status string, limit, offset int) ([]*model.WorkUnit, error) {
	units, err := s.workUnitRepo.ListByExperiment(ctx, id, status, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*model.WorkUnit, 0, len(units))
	for _, u := range units {
		out = append(out, mysql.ToWorkUnitDomain(u))
	}
	return out, nil
}

// GetUnit returns one work unit with its responses and result, or nil
func (s *ExperimentService) GetUnit(ctx context.Context, unitID int64) (*UnitDetail, error) {
	unit, err := s.workUnitRepo.Get(ctx, unitID)
	if err != nil || unit == nil {
		return nil, err
	}

	responses, err := s.resultRepo.ListResponses(ctx, unitID)
	if err != nil {
		return nil, err
	}
	result, err := s.resultRepo.GetByWorkUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return &UnitDetail{Unit: mysql.ToWorkUnitDomain(unit), Responses: responses, Result: result}, nil
}

// Cancel stops an experiment. Pending units are never claimed afterwards;
// units already locked or running finish normally.
func (s *ExperimentService) Cancel(ctx context.Context, id int64) error {
	err := s.experimentRepo.UpdateStatus(ctx, id,
		[]model.ExperimentStatus{model.ExperimentStatusCreated, model.ExperimentStatusRunning},
		model.ExperimentStatusCancelled)
	if err == nil {
		logger.InfoCtx(ctx, "experiment %d cancelled", id)
		return nil
	}
	if !errors.Is(err, mysql.ErrTransitionLost) {
		return err
	}

	experiment, getErr := s.experimentRepo.Get(ctx, id)
	if getErr != nil {
		return getErr
	}
	if experiment == nil {
		return fmt.Errorf("%w: %d", model.ErrExperimentNotFound, id)
	}
	return fmt.Errorf("%w: experiment %d is %s", model.ErrInvalidTransition, id, experiment.Status)
}

// FinalizeCompleted marks running experiments with no outstanding units as
// complete and returns how many were finalized
func (s *ExperimentService) FinalizeCompleted(ctx context.Context) (int, error) {
	ids, err := s.experimentRepo.ListByStatus(ctx, model.ExperimentStatusRunning)
	if err != nil {
		return 0, err
	}

	finalized := 0
	for _, id := range ids {
		counts, err := s.workUnitRepo.CountByStatus(ctx, id)
		if err != nil {
			return finalized, err
		}
		if counts.Outstanding() > 0 {
			continue
		}

		err = s.experimentRepo.UpdateStatus(ctx, id,
			[]model.ExperimentStatus{model.ExperimentStatusRunning}, model.ExperimentStatusComplete)
		if errors.Is(err, mysql.ErrTransitionLost) {
			continue
		}
		if err != nil {
			return finalized, err
		}
		finalized++
		logger.InfoCtx(ctx, "experiment %d complete, complete: %d, failed: %d", id, counts.Complete, counts.Failed)
		s.notifyFinished(ctx, id, counts)
	}
	return finalized, nil
}

// notifyFinished is best effort; a failed notification never blocks finalization
func (s *ExperimentService) notifyFinished(ctx context.Context, id int64, counts model.StatusCounts) {
	if s.notifier == nil {
		return
	}
	experiment, err := s.experimentRepo.Get(ctx, id)
	if err != nil || experiment == nil {
		logger.WarnCtx(ctx, "skip finish notification for experiment %d: %v", id, err)
		return
	}

	err = s.notifier.SendExperimentFinished(ctx, &notification.ExperimentFinished{
		ExperimentID: id,
		Number:       experiment.Number,
		Name:         experiment.Name,
		Complete:     counts.Complete,
		Failed:       counts.Failed,
		FinishedAt:   time.Now().UTC(),
	})
	if err != nil {
		logger.WarnCtx(ctx, "finish notification for experiment %d failed: %v", id, err)
	}
}

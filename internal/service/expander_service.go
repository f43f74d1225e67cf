package service

import (
	"context"
	"fmt"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/pkg/logger"
	"surveyor/pkg/store/mysql"
)

// ExpanderService turns experiment definitions into configs and work units
type ExpanderService struct {
	ds             *mysql.Datastore
	profileRepo    *mysql.ProfileRepository
	experimentRepo *mysql.ExperimentRepository
	workUnitRepo   *mysql.WorkUnitRepository
	instruments    *instrument.Registry
	encoders       *encoding.Registry
	providers      map[string]bool
}

// NewExpanderService creates a new expander service. providers lists the
// configured provider names a definition may reference.
func NewExpanderService(repo *mysql.Repository, instruments *instrument.Registry, encoders *encoding.Registry, providers []string) *ExpanderService {
	known := make(map[string]bool, len(providers))
	for _, p := range providers {
		known[p] = true
	}
	return &ExpanderService{
		ds:             repo.GetDatastore(),
		profileRepo:    repo.Profile,
		experimentRepo: repo.Experiment,
		workUnitRepo:   repo.WorkUnit,
		instruments:    instruments,
		encoders:       encoders,
		providers:      known,
	}
}

// CreateExperiment validates a definition and persists the experiment with
// the cross product of its dimensions as configs
func (s *ExpanderService) CreateExperiment(ctx context.Context, def *model.ExperimentDefinition) (*model.Experiment, error) {
	if err := s.validate(def); err != nil {
		return nil, err
	}

	set, err := s.profileRepo.GetSetByName(ctx, def.ProfileSet)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrProfileSetNotFound, def.ProfileSet)
	}

	cells := def.Cells()
	configs := make([]*mysql.ExperimentConfig, 0, len(cells))
	for _, c := range cells {
		configs = append(configs, &mysql.ExperimentConfig{
			InputSystem: c.Encoding,
			Instrument:  c.Instrument,
			Provider:    c.Provider,
		})
	}

	experiment := &mysql.Experiment{
		Name:           def.Name,
		Description:    def.Description,
		ProfileSetID:   set.ID,
		IsLongitudinal: def.Longitudinal,
	}
	if err := s.experimentRepo.Create(ctx, experiment, configs); err != nil {
		return nil, err
	}
	experiment.ProfileSet = set

	logger.InfoCtx(ctx, "experiment created, id: %d, number: %d, configs: %d", experiment.ID, experiment.Number, len(configs))
	return mysql.ToExperimentDomain(experiment, configs), nil
}

func (s *ExpanderService) validate(def *model.ExperimentDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	for _, enc := range def.Encodings {
		if _, ok := s.encoders.Get(enc); !ok {
			return fmt.Errorf("%w: %s", model.ErrUnknownEncoding, enc)
		}
	}
	for _, inst := range def.Instruments {
		if !s.instruments.Has(inst) {
			return fmt.Errorf("%w: %s", model.ErrUnknownInstrument, inst)
		}
	}
	for _, p := range def.Providers {
		if !s.providers[p] {
			return fmt.Errorf("%w: %s", model.ErrUnknownProvider, p)
		}
	}
	return nil
}

// Expand creates one pending work unit per (config, profile) pair in a single
// transaction and returns how many were created
func (s *ExpanderService) Expand(ctx context.Context, experimentID int64) (int, error) {
	var created int
	err := s.ds.ExecTx(ctx, func(txCtx context.Context) error {
		experiment, err := s.experimentRepo.Get(txCtx, experimentID)
		if err != nil {
			return err
		}
		if experiment == nil {
			return fmt.Errorf("%w: %d", model.ErrExperimentNotFound, experimentID)
		}
		if experiment.Status == string(model.ExperimentStatusCancelled) {
			return fmt.Errorf("%w: experiment %d is cancelled", model.ErrInvalidTransition, experimentID)
		}

		existing, err := s.workUnitRepo.CountByExperiment(txCtx, experimentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: experiment %d has %d work units", model.ErrAlreadyExpanded, experimentID, existing)
		}

		configs, err := s.experimentRepo.ListConfigs(txCtx, experimentID)
		if err != nil {
			return err
		}
		profiles, err := s.profileRepo.ListProfiles(txCtx, experiment.ProfileSetID)
		if err != nil {
			return err
		}
		if len(configs) == 0 || len(profiles) == 0 {
			return fmt.Errorf("%w: %d configs, %d profiles", model.ErrEmptyDesign, len(configs), len(profiles))
		}

		units := make([]*mysql.WorkUnit, 0, len(configs)*len(profiles))
		for _, c := range configs {
			for _, p := range profiles {
				units = append(units, mysql.FromSnapshot(experiment.ID, c.ID, model.UnitSnapshot{
					Encoding:     c.InputSystem,
					Instrument:   c.Instrument,
					Provider:     c.Provider,
					Profile:      mysql.ToProfileDomain(p),
					Longitudinal: experiment.IsLongitudinal,
				}))
			}
		}
		if err := s.workUnitRepo.BulkCreate(txCtx, units); err != nil {
			return err
		}
		created = len(units)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.InfoCtx(ctx, "experiment expanded, id: %d, work_units: %d", experimentID, created)
	return created, nil
}

// CreateAndExpand creates and expands an experiment atomically
func (s *ExpanderService) CreateAndExpand(ctx context.Context, def *model.ExperimentDefinition) (*model.Experiment, int, error) {
	var (
		experiment *model.Experiment
		created    int
	)
	err := s.ds.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		if experiment, err = s.CreateExperiment(txCtx, def); err != nil {
			return err
		}
		created, err = s.Expand(txCtx, experiment.ID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return experiment, created, nil
}

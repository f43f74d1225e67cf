package mysql

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"surveyor/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	ds, err := NewSQLiteDatastore(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, ds.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = ds.Close() })

	return NewRepositoryWithDatastore(ds)
}

// seedExperiment creates a profile set with profiles and an experiment with
// one config per provider, then expands it into work units
func seedExperiment(t *testing.T, repo *Repository, profiles int, providers ...string) *Experiment {
	t.Helper()
	ctx := context.Background()

	set := &ProfileSet{Name: fmt.Sprintf("set-%d-%s", profiles, strings.Join(providers, "-"))}
	for i := 0; i < profiles; i++ {
		set.Profiles = append(set.Profiles, Profile{Index: i, Label: fmt.Sprintf("p%d", i), Openness: 50, Neuroticism: 50})
	}
	require.NoError(t, repo.Profile.CreateSet(ctx, set))

	exp := &Experiment{Name: "exp", Description: "test", ProfileSetID: set.ID}
	var configs []*ExperimentConfig
	for _, p := range providers {
		configs = append(configs, &ExperimentConfig{InputSystem: "ocean_direct", Instrument: "phq9", Provider: p})
	}
	require.NoError(t, repo.Experiment.Create(ctx, exp, configs))

	var units []*WorkUnit
	for _, c := range configs {
		for _, p := range set.Profiles {
			units = append(units, FromSnapshot(exp.ID, c.ID, model.UnitSnapshot{
				Encoding:   c.InputSystem,
				Instrument: c.Instrument,
				Provider:   c.Provider,
				Profile:    ToProfileDomain(&p),
			}))
		}
	}
	require.NoError(t, repo.WorkUnit.BulkCreate(ctx, units))
	return exp
}

func claimAndBegin(t *testing.T, repo *Repository, provider, worker string) *WorkUnit {
	t.Helper()
	ctx := context.Background()

	unit, err := repo.WorkUnit.Claim(ctx, provider, worker)
	require.NoError(t, err)
	require.NotNil(t, unit)
	require.NoError(t, repo.WorkUnit.Begin(ctx, unit.ID, unit.WorkerID, "prompt"))
	return unit
}

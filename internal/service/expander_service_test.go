package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"surveyor/internal/model"
	"surveyor/pkg/store/mysql"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpander_CreateAndExpand(t *testing.T) {
	repo := newTestRepository(t)
	createProfileSet(t, repo, "ocean", 4)
	svc := newTestExpander(repo)
	ctx := context.Background()

	exp, created, err := svc.CreateAndExpand(ctx, definition("ocean", []string{"bfi", "phq9", "gad7"}, testProviders))
	require.NoError(t, err)
	assert.Equal(t, 3*2*4, created)
	assert.Equal(t, 1, exp.Number)
	assert.Equal(t, model.ExperimentStatusCreated, exp.Status)
	assert.Len(t, exp.Configs, 6)

	units, err := repo.WorkUnit.ListByExperiment(ctx, exp.ID, "", 100, 0)
	require.NoError(t, err)
	require.Len(t, units, 24)
	for _, u := range units {
		assert.Equal(t, string(model.WorkUnitStatusPending), u.Status)
		assert.Equal(t, 0, u.Attempts)
		assert.Equal(t, "ocean_direct", u.InputSystem)
		assert.Equal(t, 90, u.Neuroticism)
		assert.Equal(t, fmt.Sprintf("profile_%d", u.ProfileIndex), u.ProfileLabel)
	}

	_, err = svc.Expand(ctx, exp.ID)
	assert.True(t, errors.Is(err, model.ErrAlreadyExpanded))

	count, err := repo.WorkUnit.CountByExperiment(ctx, exp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 24, count)
}

func TestExpander_CreateExperimentValidation(t *testing.T) {
	repo := newTestRepository(t)
	createProfileSet(t, repo, "ocean", 1)
	svc := newTestExpander(repo)

	tests := []struct {
		name    string
		mutate  func(d *model.ExperimentDefinition)
		wantErr error
	}{
		{"missing description", func(d *model.ExperimentDefinition) { d.Description = "" }, model.ErrInvalidDefinition},
		{"no providers", func(d *model.ExperimentDefinition) { d.Providers = nil }, model.ErrEmptyDesign},
		{"unknown instrument", func(d *model.ExperimentDefinition) { d.Instruments = []string{"mmpi"} }, model.ErrUnknownInstrument},
		{"unknown encoding", func(d *model.ExperimentDefinition) { d.Encodings = []string{"tarot"} }, model.ErrUnknownEncoding},
		{"unknown provider", func(d *model.ExperimentDefinition) { d.Providers = []string{"eliza"} }, model.ErrUnknownProvider},
		{"missing profile set", func(d *model.ExperimentDefinition) { d.ProfileSet = "nope" }, model.ErrProfileSetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := definition("ocean", []string{"bfi"}, []string{"deepseek"})
			tt.mutate(def)
			_, err := svc.CreateExperiment(context.Background(), def)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	ids, err := repo.Experiment.ListByStatus(context.Background(), model.ExperimentStatusCreated)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExpander_ExpandErrors(t *testing.T) {
	repo := newTestRepository(t)
	svc := newTestExpander(repo)
	ctx := context.Background()

	_, err := svc.Expand(ctx, 42)
	assert.True(t, errors.Is(err, model.ErrExperimentNotFound))

	// a set without profiles can only be created below the service layer
	empty := &mysql.ProfileSet{Name: "empty"}
	require.NoError(t, repo.Profile.CreateSet(ctx, empty))
	exp, err := svc.CreateExperiment(ctx, definition("empty", []string{"phq9"}, []string{"deepseek"}))
	require.NoError(t, err)

	_, err = svc.Expand(ctx, exp.ID)
	assert.True(t, errors.Is(err, model.ErrEmptyDesign))

	// a failed CreateAndExpand leaves nothing behind
	_, _, err = svc.CreateAndExpand(ctx, definition("empty", []string{"phq9"}, []string{"deepseek"}))
	assert.True(t, errors.Is(err, model.ErrEmptyDesign))
	experiments, err := repo.Experiment.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, experiments, 1)
}

func TestExpander_CancelledExperimentNotExpanded(t *testing.T) {
	repo := newTestRepository(t)
	createProfileSet(t, repo, "ocean", 2)
	svc := newTestExpander(repo)
	ctx := context.Background()

	exp, err := svc.CreateExperiment(ctx, definition("ocean", []string{"phq9"}, []string{"deepseek"}))
	require.NoError(t, err)
	require.NoError(t, NewExperimentService(repo).Cancel(ctx, exp.ID))

	_, err = svc.Expand(ctx, exp.ID)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
}

// TestProperty_ExpansionIsConfigsTimesProfiles tests that expansion yields
// exactly |configs| x |profiles| units, one per (config, profile) pair.
func TestProperty_ExpansionIsConfigsTimesProfiles(t *testing.T) {
	repo := newTestRepository(t)
	svc := newTestExpander(repo)
	instruments := []string{"levenson", "bfi", "dark_triad", "phq9", "gad7", "phq6_bc", "phq3_a"}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	run := 0
	properties.Property("work units = configs x profiles", prop.ForAll(
		func(nInstruments, nProviders, nProfiles int) bool {
			run++
			ctx := context.Background()
			setName := fmt.Sprintf("set-%d", run)
			createProfileSet(t, repo, setName, nProfiles)

			exp, created, err := svc.CreateAndExpand(ctx,
				definition(setName, instruments[:nInstruments], testProviders[:nProviders]))
			if err != nil {
				return false
			}

			want := nInstruments * nProviders * nProfiles
			units, err := repo.WorkUnit.ListByExperiment(ctx, exp.ID, "", want+1, 0)
			if err != nil || created != want || len(units) != want {
				return false
			}

			pairs := make(map[[2]int64]bool, want)
			for _, u := range units {
				pairs[[2]int64{u.ExperimentConfigID, int64(u.ProfileIndex)}] = true
			}
			return len(pairs) == want
		},
		gen.IntRange(1, len(instruments)),
		gen.IntRange(1, len(testProviders)),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/pkg/config"
	"surveyor/pkg/store/mysql"

	"github.com/stretchr/testify/require"
)

var testProviders = []string{"deepseek", "gemini"}

func newTestRepository(t *testing.T) *mysql.Repository {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	repo, err := mysql.NewRepository("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestExpander(repo *mysql.Repository) *ExpanderService {
	return NewExpanderService(repo, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry(), testProviders)
}

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		MaxAttempts: 3,
		StaleAfter:  300,
		BackoffBase: 1,
		BackoffMax:  10,
	}
}

func createProfileSet(t *testing.T, repo *mysql.Repository, name string, n int) {
	t.Helper()

	set := &model.ProfileSet{Name: name}
	for i := 0; i < n; i++ {
		set.Profiles = append(set.Profiles, model.Profile{
			Index:  i,
			Label:  fmt.Sprintf("profile_%d", i),
			Traits: model.Traits{Openness: 10 * i, Conscientiousness: 50, Extraversion: 50, Agreeableness: 50, Neuroticism: 90},
		})
	}
	_, err := NewProfileService(repo).CreateSet(context.Background(), set)
	require.NoError(t, err)
}

func definition(profileSet string, instruments []string, providers []string) *model.ExperimentDefinition {
	return &model.ExperimentDefinition{
		Name:        "baseline",
		Description: "ocean direct baseline",
		ProfileSet:  profileSet,
		Encodings:   []string{"ocean_direct"},
		Instruments: instruments,
		Providers:   providers,
	}
}

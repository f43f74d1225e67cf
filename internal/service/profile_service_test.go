package service

import (
	"context"
	"errors"
	"testing"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewProfileService(repo)
	ctx := context.Background()

	createProfileSet(t, repo, "ocean", 3)

	got, err := svc.GetSet(ctx, "ocean")
	require.NoError(t, err)
	require.Len(t, got.Profiles, 3)
	assert.Equal(t, 20, got.Profiles[2].Openness)

	_, err = svc.CreateSet(ctx, &model.ProfileSet{Name: "ocean", Profiles: got.Profiles})
	assert.True(t, errors.Is(err, model.ErrProfileSetExists))

	_, err = svc.CreateSet(ctx, &model.ProfileSet{Name: "bad", Profiles: []model.Profile{
		{Index: 0, Traits: model.Traits{Openness: 101}},
	}})
	assert.True(t, errors.Is(err, model.ErrInvalidProfile))

	_, err = svc.GetSet(ctx, "bad")
	assert.True(t, errors.Is(err, model.ErrProfileSetNotFound))

	sets, err := svc.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Empty(t, sets[0].Profiles)
}

func TestCatalogService_SyncIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewCatalogService(repo, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry())
	ctx := context.Background()

	providers := []config.ProviderConfig{{Name: "deepseek", Model: "deepseek-chat", RequestsPerSecond: 2, MaxConcurrent: 4}}
	require.NoError(t, svc.Sync(ctx, providers))

	providers[0].Model = "deepseek-reasoner"
	require.NoError(t, svc.Sync(ctx, providers))

	instruments, err := svc.ListInstruments(ctx)
	require.NoError(t, err)
	assert.Len(t, instruments, 7)

	stored, err := svc.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "deepseek-reasoner", stored[0].ModelName)

	encodings, err := svc.ListEncodings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ocean_direct"}, encodings)
}

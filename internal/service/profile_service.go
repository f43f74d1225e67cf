package service

import (
	"context"
	"fmt"

	"surveyor/internal/model"
	"surveyor/pkg/logger"
	"surveyor/pkg/store/mysql"
)

// ProfileService manages synthetic personality profile sets
type ProfileService struct {
	profileRepo *mysql.ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(repo *mysql.Repository) *ProfileService {
	return &ProfileService{profileRepo: repo.Profile}
}

// CreateSet validates and stores a profile set with its profiles
func (s *ProfileService) CreateSet(ctx context.Context, set *model.ProfileSet) (*model.ProfileSet, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetSetByName(ctx, set.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrProfileSetExists, set.Name)
	}

	row := &mysql.ProfileSet{Name: set.Name, Description: set.Description}
	for _, p := range set.Profiles {
		row.Profiles = append(row.Profiles, mysql.FromProfileDomain(p))
	}
	if err := s.profileRepo.CreateSet(ctx, row); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "profile set created, name: %s, profiles: %d", set.Name, len(set.Profiles))
	return toProfileSetDomain(row), nil
}

// GetSet returns a profile set with its profiles
func (s *ProfileService) GetSet(ctx context.Context, name string) (*model.ProfileSet, error) {
	row, err := s.profileRepo.GetSetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrProfileSetNotFound, name)
	}
	return toProfileSetDomain(row), nil
}

// ListSets returns every profile set without profiles
func (s *ProfileService) ListSets(ctx context.Context) ([]*model.ProfileSet, error) {
	rows, err := s.profileRepo.ListSets(ctx)
	if err != nil {
		return nil, err
	}

	sets := make([]*model.ProfileSet, 0, len(rows))
	for _, r := range rows {
		sets = append(sets, toProfileSetDomain(r))
	}
	return sets, nil
}

func toProfileSetDomain(row *mysql.ProfileSet) *model.ProfileSet {
	set := &model.ProfileSet{Name: row.Name, Description: row.Description}
	for i := range row.Profiles {
		set.Profiles = append(set.Profiles, mysql.ToProfileDomain(&row.Profiles[i]))
	}
	return set
}

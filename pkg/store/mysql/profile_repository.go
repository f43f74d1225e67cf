package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ProfileRepository handles profile sets and their profiles
type ProfileRepository struct {
	ds *Datastore
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(ds *Datastore) *ProfileRepository {
	return &ProfileRepository{ds: ds}
}

// CreateSet creates a profile set together with its profiles
func (r *ProfileRepository) CreateSet(ctx context.Context, set *ProfileSet) error {
	now := r.ds.Now()
	set.CreatedAt = now
	for i := range set.Profiles {
		set.Profiles[i].CreatedAt = now
	}

	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.ds.DB(txCtx).Create(set).Error; err != nil {
			return fmt.Errorf("failed to create profile set %s: %w", set.Name, err)
		}
		return nil
	})
}

// GetSetByName retrieves a profile set with profiles ordered by index
func (r *ProfileRepository) GetSetByName(ctx context.Context, name string) (*ProfileSet, error) {
	var set ProfileSet
	err := r.ds.DB(ctx).
		Preload("Profiles", func(db *gorm.DB) *gorm.DB {
			return db.Order("profile_index ASC")
		}).
		Where("name = ?", name).
		First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile set: %w", err)
	}
	return &set, nil
}

// GetSet retrieves a profile set by ID without profiles
func (r *ProfileRepository) GetSet(ctx context.Context, id int64) (*ProfileSet, error) {
	var set ProfileSet
	err := r.ds.DB(ctx).Where("id = ?", id).First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile set: %w", err)
	}
	return &set, nil
}

// ListProfiles returns the profiles of a set ordered by index
func (r *ProfileRepository) ListProfiles(ctx context.Context, setID int64) ([]*Profile, error) {
	var profiles []*Profile
	err := r.ds.DB(ctx).
		Where("profile_set_id = ?", setID).
		Order("profile_index ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// ListSets returns every profile set without profiles
func (r *ProfileRepository) ListSets(ctx context.Context) ([]*ProfileSet, error) {
	var sets []*ProfileSet
	if err := r.ds.DB(ctx).Order("name ASC").Find(&sets).Error; err != nil {
		return nil, fmt.Errorf("failed to list profile sets: %w", err)
	}
	return sets, nil
}

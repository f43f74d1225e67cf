package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// ReferenceRepository handles input systems, providers and instruments
type ReferenceRepository struct {
	ds *Datastore
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(ds *Datastore) *ReferenceRepository {
	return &ReferenceRepository{ds: ds}
}

// UpsertInputSystem inserts an input system if it does not exist
func (r *ReferenceRepository) UpsertInputSystem(ctx context.Context, name string) error {
	row := &InputSystem{Name: name, CreatedAt: r.ds.Now()}
	err := r.ds.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert input system %s: %w", name, err)
	}
	return nil
}

// UpsertProvider inserts or refreshes a provider row
func (r *ReferenceRepository) UpsertProvider(ctx context.Context, provider *Provider) error {
	now := r.ds.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	err := r.ds.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"model_name", "rate_limit_per_second", "max_concurrent", "updated_at"}),
		}).
		Create(provider).Error
	if err != nil {
		return fmt.Errorf("failed to upsert provider %s: %w", provider.Name, err)
	}
	return nil
}

// UpsertInstrument inserts or refreshes an instrument row
func (r *ReferenceRepository) UpsertInstrument(ctx context.Context, instrument *Instrument) error {
	instrument.CreatedAt = r.ds.Now()
	err := r.ds.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "short_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "item_count", "aggregation"}),
		}).
		Create(instrument).Error
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", instrument.ShortName, err)
	}
	return nil
}

// ListProviders returns all providers ordered by name
func (r *ReferenceRepository) ListProviders(ctx context.Context) ([]*Provider, error) {
	var providers []*Provider
	if err := r.ds.DB(ctx).Order("name ASC").Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// ListInstruments returns all instruments ordered by short name
func (r *ReferenceRepository) ListInstruments(ctx context.Context) ([]*Instrument, error) {
	var instruments []*Instrument
	if err := r.ds.DB(ctx).Order("short_name ASC").Find(&instruments).Error; err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return instruments, nil
}

// ListInputSystems returns all input system names
func (r *ReferenceRepository) ListInputSystems(ctx context.Context) ([]string, error) {
	var names []string
	err := r.ds.DB(ctx).Model(&InputSystem{}).Order("name ASC").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list input systems: %w", err)
	}
	return names, nil
}

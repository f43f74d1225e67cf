package mysql

import "context"

// Repository aggregates all repositories over one datastore
type Repository struct {
	ds *Datastore

	Reference  *ReferenceRepository
	Profile    *ProfileRepository
	Experiment *ExperimentRepository
	WorkUnit   *WorkUnitRepository
	Result     *ResultRepository
	Analysis   *AnalysisRepository
}

// NewRepository opens the datastore for driver and builds every sub-repository
func NewRepository(driver, dsn string) (*Repository, error) {
	ds, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewRepositoryWithDatastore(ds), nil
}

// NewRepositoryWithDatastore builds repositories over an existing datastore
func NewRepositoryWithDatastore(ds *Datastore) *Repository {
	return &Repository{
		ds:         ds,
		Reference:  NewReferenceRepository(ds),
		Profile:    NewProfileRepository(ds),
		Experiment: NewExperimentRepository(ds),
		WorkUnit:   NewWorkUnitRepository(ds),
		Result:     NewResultRepository(ds),
		Analysis:   NewAnalysisRepository(ds),
	}
}

// GetDatastore returns the underlying datastore for transaction support
func (r *Repository) GetDatastore() *Datastore {
	return r.ds
}

// Migrate creates or updates the schema
func (r *Repository) Migrate(ctx context.Context) error {
	return r.ds.AutoMigrate(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}

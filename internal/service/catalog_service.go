package service

import (
	"context"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	"surveyor/pkg/store/mysql"
)

// CatalogService mirrors the in-process registries and configured providers
// into the reference tables
type CatalogService struct {
	referenceRepo *mysql.ReferenceRepository
	instruments   *instrument.Registry
	encoders      *encoding.Registry
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo *mysql.Repository, instruments *instrument.Registry, encoders *encoding.Registry) *CatalogService {
	return &CatalogService{
		referenceRepo: repo.Reference,
		instruments:   instruments,
		encoders:      encoders,
	}
}

// Sync upserts every encoder, instrument and provider
func (s *CatalogService) Sync(ctx context.Context, providers []config.ProviderConfig) error {
	for _, name := range s.encoders.Names() {
		if err := s.referenceRepo.UpsertInputSystem(ctx, name); err != nil {
			return err
		}
	}

	for _, inst := range s.instruments.List() {
		err := s.referenceRepo.UpsertInstrument(ctx, &mysql.Instrument{
			ShortName:   inst.ShortName,
			FullName:    inst.FullName,
			ItemCount:   inst.ItemCount(),
			Aggregation: string(inst.Aggregation),
		})
		if err != nil {
			return err
		}
	}

	for _, p := range providers {
		err := s.referenceRepo.UpsertProvider(ctx, &mysql.Provider{
			Name:               p.Name,
			ModelName:          p.Model,
			RateLimitPerSecond: p.RequestsPerSecond,
			MaxConcurrent:      p.MaxConcurrent,
		})
		if err != nil {
			return err
		}
	}

	logger.InfoCtx(ctx, "reference data synced, encodings: %d, instruments: %d, providers: %d",
		len(s.encoders.Names()), len(s.instruments.Names()), len(providers))
	return nil
}

// ListInstruments returns the registered instruments
func (s *CatalogService) ListInstruments(ctx context.Context) ([]*mysql.Instrument, error) {
	return s.referenceRepo.ListInstruments(ctx)
}

// ListProviders returns the synced providers
func (s *CatalogService) ListProviders(ctx context.Context) ([]*mysql.Provider, error) {
	return s.referenceRepo.ListProviders(ctx)
}

// ListEncodings returns the synced input systems
func (s *CatalogService) ListEncodings(ctx context.Context) ([]string, error) {
	return s.referenceRepo.ListInputSystems(ctx)
}

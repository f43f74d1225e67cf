package service

import (
	"context"
	"fmt"
	"strings"

	"surveyor/internal/model"
	"surveyor/pkg/store/mysql"
)

// AnalysisService read-only access to finished results
type AnalysisService struct {
	analysisRepo *mysql.AnalysisRepository
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(repo *mysql.Repository) *AnalysisService {
	return &AnalysisService{analysisRepo: repo.Analysis}
}

// ListResults returns results with their work unit dimensions
func (s *AnalysisService) ListResults(ctx context.Context, filter model.AnalysisFilter) ([]*model.ResultRow, error) {
	return s.analysisRepo.ListResults(ctx, filter)
}

// ListItemScores returns per-item scores with their work unit dimensions
func (s *AnalysisService) ListItemScores(ctx context.Context, filter model.AnalysisFilter) ([]*model.ItemScoreRow, error) {
	return s.analysisRepo.ListItemScores(ctx, filter)
}

// Summarize groups results by the comma separated dimensions in groupBy
func (s *AnalysisService) Summarize(ctx context.Context, filter model.AnalysisFilter, groupBy string) ([]*model.SummaryRow, error) {
	dims, err := ParseGroupBy(groupBy)
	if err != nil {
		return nil, err
	}
	return s.analysisRepo.Summarize(ctx, filter, dims)
}

// ParseGroupBy splits "provider,instrument" into dimensions, rejecting
// unknown or repeated names
func ParseGroupBy(groupBy string) ([]model.Dimension, error) {
	var dims []model.Dimension
	seen := make(map[model.Dimension]bool)
	for _, part := range strings.Split(groupBy, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, ok := model.ParseDimension(part)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrInvalidGroupBy, part)
		}
		if seen[dim] {
			return nil, fmt.Errorf("%w: %s repeated", model.ErrInvalidGroupBy, part)
		}
		seen[dim] = true
		dims = append(dims, dim)
	}
	return dims, nil
}

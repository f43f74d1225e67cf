package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"surveyor/internal/model"
	smodel "surveyor/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// dimensionColumns whitelists the group-by columns of Summarize
var dimensionColumns = map[model.Dimension]string{
	model.DimensionInstrument:   "w.instrument",
	model.DimensionEncoding:     "w.input_system",
	model.DimensionProfileLabel: "w.profile_label",
	model.DimensionProvider:     "w.provider",
}

// AnalysisRepository read-only joins of results with work unit dimensions
type AnalysisRepository struct {
	ds *Datastore
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(ds *Datastore) *AnalysisRepository {
	return &AnalysisRepository{ds: ds}
}

func applyFilter(query *gorm.DB, filter model.AnalysisFilter) *gorm.DB {
	if filter.ExperimentID > 0 {
		query = query.Where("w.experiment_id = ?", filter.ExperimentID)
	}
	if filter.Instrument != "" {
		query = query.Where("w.instrument = ?", filter.Instrument)
	}
	if filter.Encoding != "" {
		query = query.Where("w.input_system = ?", filter.Encoding)
	}
	if filter.Provider != "" {
		query = query.Where("w.provider = ?", filter.Provider)
	}
	if filter.ProfileLabel != "" {
		query = query.Where("w.profile_label = ?", filter.ProfileLabel)
	}
	return query
}

type resultRow struct {
	WorkUnitID        int64
	ExperimentID      int64
	InputSystem       string
	Instrument        string
	Provider          string
	ProfileIndex      int
	ProfileLabel      string
	Openness          int
	Conscientiousness int
	Extraversion      int
	Agreeableness     int
	Neuroticism       int
	TotalScore        *float64
	FactorScores      smodel.FactorScores
	QuestionsAnswered int
	QuestionsTotal    int
	DurationMs        int64
}

// ListResults returns completed results joined with their unit's dimensions
func (r *AnalysisRepository) ListResults(ctx context.Context, filter model.AnalysisFilter) ([]*model.ResultRow, error) {
	query := r.ds.DB(ctx).Table("results AS r").
		Select("r.work_unit_id, w.experiment_id, w.input_system, w.instrument, w.provider, " +
			"w.profile_index, w.profile_label, w.openness, w.conscientiousness, w.extraversion, " +
			"w.agreeableness, w.neuroticism, r.total_score, r.factor_scores, " +
			"r.questions_answered, r.questions_total, r.duration_ms").
		Joins("JOIN work_units AS w ON w.id = r.work_unit_id")

	var rows []resultRow
	if err := applyFilter(query, filter).Order("r.work_unit_id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	out := make([]*model.ResultRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, &model.ResultRow{
			WorkUnitID:   row.WorkUnitID,
			ExperimentID: row.ExperimentID,
			Encoding:     row.InputSystem,
			Instrument:   row.Instrument,
			Provider:     row.Provider,
			ProfileIndex: row.ProfileIndex,
			ProfileLabel: row.ProfileLabel,
			Traits: model.Traits{
				Openness:          row.Openness,
				Conscientiousness: row.Conscientiousness,
				Extraversion:      row.Extraversion,
				Agreeableness:     row.Agreeableness,
				Neuroticism:       row.Neuroticism,
			},
			TotalScore:        row.TotalScore,
			FactorScores:      map[string]float64(row.FactorScores),
			QuestionsAnswered: row.QuestionsAnswered,
			QuestionsTotal:    row.QuestionsTotal,
			DurationMs:        row.DurationMs,
		})
	}
	return out, nil
}

// ListItemScores returns per-item post-reverse scores of completed units
func (r *AnalysisRepository) ListItemScores(ctx context.Context, filter model.AnalysisFilter) ([]*model.ItemScoreRow, error) {
	query := r.ds.DB(ctx).Table("responses AS p").
		Select("p.work_unit_id, w.input_system AS encoding, w.instrument, w.provider, w.profile_label, " +
			"p.question_number, p.factor, p.score_after_reverse").
		Joins("JOIN work_units AS w ON w.id = p.work_unit_id")

	var rows []*model.ItemScoreRow
	err := applyFilter(query, filter).
		Order("p.work_unit_id ASC, p.question_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list item scores: %w", err)
	}
	return rows, nil
}

// Summarize counts results and averages total scores per group.
// Units with a null total are counted but excluded from the mean.
func (r *AnalysisRepository) Summarize(ctx context.Context, filter model.AnalysisFilter, groupBy []model.Dimension) ([]*model.SummaryRow, error) {
	columns := make([]string, 0, len(groupBy))
	for _, dim := range groupBy {
		col, ok := dimensionColumns[dim]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrInvalidGroupBy, dim)
		}
		columns = append(columns, col)
	}

	selectExpr := "COUNT(*) AS count, COUNT(r.total_score) AS scored, AVG(r.total_score) AS mean_total"
	query := r.ds.DB(ctx).Table("results AS r").
		Joins("JOIN work_units AS w ON w.id = r.work_unit_id")
	query = applyFilter(query, filter)
	if len(columns) > 0 {
		grouping := strings.Join(columns, ", ")
		selectExpr = grouping + ", " + selectExpr
		query = query.Group(grouping).Order(grouping)
	}

	rows, err := query.Select(selectExpr).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to summarize results: %w", err)
	}
	defer rows.Close()

	var out []*model.SummaryRow
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, 0, len(columns)+3)
		for i := range values {
			dest = append(dest, &values[i])
		}
		var count, scored int64
		var mean sql.NullFloat64
		dest = append(dest, &count, &scored, &mean)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}

		row := &model.SummaryRow{
			Group:  make(map[model.Dimension]string, len(groupBy)),
			Count:  count,
			Scored: scored,
		}
		for i, dim := range groupBy {
			row.Group[dim] = values[i].String
		}
		if mean.Valid {
			m := mean.Float64
			row.MeanTotal = &m
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}
	return out, nil
}

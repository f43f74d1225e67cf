package model

// AnalysisFilter narrows analysis reads; zero values match everything
type AnalysisFilter struct {
	ExperimentID int64  `form:"-"`
	Instrument   string `form:"instrument"`
	Encoding     string `form:"encoding"`
	Provider     string `form:"provider"`
	ProfileLabel string `form:"profile_label"`
}

// Dimension a grouping axis for Summarize
type Dimension string

const (
	DimensionInstrument   Dimension = "instrument"
	DimensionEncoding     Dimension = "encoding"
	DimensionProfileLabel Dimension = "profile_label"
	DimensionProvider     Dimension = "provider"
)

// ParseDimension maps an external name to a Dimension
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(s) {
	case DimensionInstrument, DimensionEncoding, DimensionProfileLabel, DimensionProvider:
		return Dimension(s), true
	}
	return "", false
}

// ResultRow a completed result joined with its unit's dimensions
type ResultRow struct {
	WorkUnitID        int64              `json:"work_unit_id"`
	ExperimentID      int64              `json:"experiment_id"`
	Encoding          string             `json:"encoding"`
	Instrument        string             `json:"instrument"`
	Provider          string             `json:"provider"`
	ProfileIndex      int                `json:"profile_index"`
	ProfileLabel      string             `json:"profile_label"`
	Traits            Traits             `json:"traits"`
	TotalScore        *float64           `json:"total_score"`
	FactorScores      map[string]float64 `json:"factor_scores"`
	QuestionsAnswered int                `json:"questions_answered"`
	QuestionsTotal    int                `json:"questions_total"`
	DurationMs        int64              `json:"duration_ms"`
}

// ItemScoreRow one post-reverse item score joined with its unit's dimensions
type ItemScoreRow struct {
	WorkUnitID        int64  `json:"work_unit_id"`
	Encoding          string `json:"encoding"`
	Instrument        string `json:"instrument"`
	Provider          string `json:"provider"`
	ProfileLabel      string `json:"profile_label"`
	QuestionNumber    int    `json:"question_number"`
	Factor            string `json:"factor"`
	ScoreAfterReverse *int   `json:"score_after_reverse"`
}

// SummaryRow count and mean total for one group
type SummaryRow struct {
	Group     map[Dimension]string `json:"group"`
	Count     int64                `json:"count"`
	Scored    int64                `json:"scored"`
	MeanTotal *float64             `json:"mean_total"`
}

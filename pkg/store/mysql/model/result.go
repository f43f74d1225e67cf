package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Response MySQL model for responses table. Rows are append-only.
type Response struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkUnitID        int64     `gorm:"column:work_unit_id;not null;uniqueIndex:idx_responses_unit_question,priority:1" json:"work_unit_id"`
	QuestionNumber    int       `gorm:"column:question_number;not null;uniqueIndex:idx_responses_unit_question,priority:2" json:"question_number"`
	QuestionText      string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Factor            string    `gorm:"column:factor;type:varchar(64);not null" json:"factor"`
	IsReversed        bool      `gorm:"column:is_reversed;not null" json:"is_reversed"`
	RawResponse       string    `gorm:"column:raw_response;type:text" json:"raw_response"`
	ParsedScore       *int      `gorm:"column:parsed_score" json:"parsed_score"`
	ScoreAfterReverse *int      `gorm:"column:score_after_reverse" json:"score_after_reverse"`
	ResponseTimeMs    int64     `gorm:"column:response_time_ms;not null" json:"response_time_ms"`
	SequencePosition  *int      `gorm:"column:sequence_position" json:"sequence_position"`
	PromptTokens      *int      `gorm:"column:prompt_tokens" json:"prompt_tokens"`
	CreatedAt         time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for Response
func (Response) TableName() string {
	return "responses"
}

// Result MySQL model for results table, at most one per work unit
type Result struct {
	ID                int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkUnitID        int64        `gorm:"column:work_unit_id;not null;uniqueIndex:idx_results_work_unit" json:"work_unit_id"`
	TotalScore        *float64     `gorm:"column:total_score" json:"total_score"`
	FactorScores      FactorScores `gorm:"column:factor_scores;type:json" json:"factor_scores"`
	QuestionsAnswered int          `gorm:"column:questions_answered;not null" json:"questions_answered"`
	QuestionsTotal    int          `gorm:"column:questions_total;not null" json:"questions_total"`
	DurationMs        int64        `gorm:"column:duration_ms;not null" json:"duration_ms"`
	CreatedAt         time.Time    `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for Result
func (Result) TableName() string {
	return "results"
}

// FactorScores factor name -> factor score, stored as JSON
type FactorScores map[string]float64

// Value implements driver.Valuer interface
func (f FactorScores) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (f *FactorScores) Scan(value interface{}) error {
	if value == nil {
		*f = FactorScores{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan FactorScores: unsupported type %T", value)
	}

	scores := make(FactorScores)
	if err := json.Unmarshal(bytes, &scores); err != nil {
		return fmt.Errorf("failed to unmarshal FactorScores: %w", err)
	}
	*f = scores
	return nil
}

package model

import (
	"fmt"
	"time"
)

// WorkUnitStatus work unit queue status
type WorkUnitStatus string

const (
	WorkUnitStatusPending  WorkUnitStatus = "pending"
	WorkUnitStatusLocked   WorkUnitStatus = "locked"
	WorkUnitStatusRunning  WorkUnitStatus = "running"
	WorkUnitStatusComplete WorkUnitStatus = "complete"
	WorkUnitStatusFailed   WorkUnitStatus = "failed"
	WorkUnitStatusRetry    WorkUnitStatus = "retry"
)

// IsTerminal reports whether no further transition is possible
func (s WorkUnitStatus) IsTerminal() bool {
	return s == WorkUnitStatusComplete || s == WorkUnitStatusFailed
}

func (s WorkUnitStatus) String() string {
	return string(s)
}

// Traits five-factor trait values, each 0..100
type Traits struct {
	Openness          int `json:"openness" yaml:"openness"`
	Conscientiousness int `json:"conscientiousness" yaml:"conscientiousness"`
	Extraversion      int `json:"extraversion" yaml:"extraversion"`
	Agreeableness     int `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism       int `json:"neuroticism" yaml:"neuroticism"`
}

// Validate rejects values outside 0..100
func (t Traits) Validate() error {
	values := []struct {
		name  string
		value int
	}{
		{"openness", t.Openness},
		{"conscientiousness", t.Conscientiousness},
		{"extraversion", t.Extraversion},
		{"agreeableness", t.Agreeableness},
		{"neuroticism", t.Neuroticism},
	}
	for _, v := range values {
		if v.value < 0 || v.value > 100 {
			return fmt.Errorf("%w: %s=%d out of range 0..100", ErrInvalidProfile, v.name, v.value)
		}
	}
	return nil
}

// Profile a labelled point in trait space
type Profile struct {
	Index  int    `json:"index" yaml:"index"`
	Label  string `json:"label" yaml:"label"`
	Traits `yaml:",inline"`
}

// ProfileSet named collection of profiles
type ProfileSet struct {
	Name        string    `json:"name" yaml:"name" binding:"required"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Profiles    []Profile `json:"profiles" yaml:"profiles" binding:"required"`
}

// Validate checks labels, ranges and index uniqueness
func (s *ProfileSet) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: profile set name is required", ErrInvalidProfile)
	}
	if len(s.Profiles) == 0 {
		return fmt.Errorf("%w: profile set %s has no profiles", ErrInvalidProfile, s.Name)
	}
	seen := make(map[int]bool, len(s.Profiles))
	for _, p := range s.Profiles {
		if seen[p.Index] {
			return fmt.Errorf("%w: duplicate profile index %d", ErrInvalidProfile, p.Index)
		}
		seen[p.Index] = true
		if err := p.Traits.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", p.Index, err)
		}
	}
	return nil
}

// UnitSnapshot everything a work unit needs to execute and be analyzed,
// copied by value at expansion time
type UnitSnapshot struct {
	Encoding     string  `json:"encoding"`
	Instrument   string  `json:"instrument"`
	Provider     string  `json:"provider"`
	Profile      Profile `json:"profile"`
	Longitudinal bool    `json:"longitudinal"`
}

// WorkUnit queue entry view
type WorkUnit struct {
	ID           int64          `json:"id"`
	ExperimentID int64          `json:"experiment_id"`
	Snapshot     UnitSnapshot   `json:"snapshot"`
	Status       WorkUnitStatus `json:"status"`
	Attempts     int            `json:"attempts"`
	WorkerID     string         `json:"worker_id,omitempty"`
	PromptSent   string         `json:"prompt_sent,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LockedAt     *time.Time     `json:"locked_at,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// ItemResponse one answered (or unparseable) item of a unit
type ItemResponse struct {
	QuestionNumber    int    `json:"question_number"`
	QuestionText      string `json:"question_text"`
	Factor            string `json:"factor"`
	IsReversed        bool   `json:"is_reversed"`
	RawResponse       string `json:"raw_response"`
	ParsedScore       *int   `json:"parsed_score"`
	ScoreAfterReverse *int   `json:"score_after_reverse"`
	ResponseTimeMs    int64  `json:"response_time_ms"`
	SequencePosition  *int   `json:"sequence_position,omitempty"`
	PromptTokens      *int   `json:"prompt_tokens,omitempty"`
}

// UnitResult aggregated scores of a unit
type UnitResult struct {
	TotalScore        *float64           `json:"total_score"`
	FactorScores      map[string]float64 `json:"factor_scores"`
	QuestionsAnswered int                `json:"questions_answered"`
	QuestionsTotal    int                `json:"questions_total"`
	DurationMs        int64              `json:"duration_ms"`
}

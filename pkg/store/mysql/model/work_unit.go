package model

import "time"

// WorkUnit MySQL model for work_units table
// Dimension columns are copied at expansion time and never joined back to reference tables
type WorkUnit struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExperimentID       int64  `gorm:"column:experiment_id;not null;index:idx_work_units_experiment_status,priority:1" json:"experiment_id"`
	ExperimentConfigID int64  `gorm:"column:experiment_config_id;not null;uniqueIndex:idx_work_units_config_profile,priority:1" json:"experiment_config_id"`
	InputSystem        string `gorm:"column:input_system;type:varchar(64);not null" json:"input_system"`
	Instrument         string `gorm:"column:instrument;type:varchar(64);not null" json:"instrument"`
	Provider           string `gorm:"column:provider;type:varchar(64);not null;index:idx_work_units_claim,priority:1" json:"provider"`
	ProfileIndex       int    `gorm:"column:profile_index;not null;uniqueIndex:idx_work_units_config_profile,priority:2" json:"profile_index"`
	ProfileLabel       string `gorm:"column:profile_label;type:varchar(255)" json:"profile_label"`
	Openness           int    `gorm:"column:openness;not null" json:"openness"`
	Conscientiousness  int    `gorm:"column:conscientiousness;not null" json:"conscientiousness"`
	Extraversion       int    `gorm:"column:extraversion;not null" json:"extraversion"`
	Agreeableness      int    `gorm:"column:agreeableness;not null" json:"agreeableness"`
	Neuroticism        int    `gorm:"column:neuroticism;not null" json:"neuroticism"`
	IsLongitudinal     bool   `gorm:"column:is_longitudinal;not null" json:"is_longitudinal"`

	Status       string `gorm:"column:status;type:varchar(32);not null;index:idx_work_units_claim,priority:2;index:idx_work_units_experiment_status,priority:2;index:idx_work_units_status_heartbeat,priority:1" json:"status"`
	Attempts     int    `gorm:"column:attempts;not null" json:"attempts"`
	WorkerID     string `gorm:"column:worker_id;type:varchar(255);index:idx_work_units_worker_id" json:"worker_id"`
	PromptSent   string `gorm:"column:prompt_sent;type:text" json:"prompt_sent"`
	ErrorMessage string `gorm:"column:error_message;type:text" json:"error_message"`

	CreatedAt   time.Time  `gorm:"column:created_at;precision:3;not null" json:"created_at"`
	AvailableAt time.Time  `gorm:"column:available_at;precision:3;not null;index:idx_work_units_claim,priority:3" json:"available_at"`
	LockedAt    *time.Time `gorm:"column:locked_at;precision:3" json:"locked_at"`
	StartedAt   *time.Time `gorm:"column:started_at;precision:3" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at;precision:3" json:"completed_at"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at;precision:3;index:idx_work_units_status_heartbeat,priority:2" json:"heartbeat_at"`
}

// TableName specifies the table name for WorkUnit
func (WorkUnit) TableName() string {
	return "work_units"
}

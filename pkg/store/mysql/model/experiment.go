package model

import "time"

// Experiment MySQL model for experiments table
type Experiment struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Number         int        `gorm:"column:experiment_number;not null;uniqueIndex:idx_experiments_number" json:"experiment_number"`
	Name           string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description    string     `gorm:"column:description;type:text;not null" json:"description"`
	ProfileSetID   int64      `gorm:"column:profile_set_id;not null;index:idx_experiments_profile_set" json:"profile_set_id"`
	Status         string     `gorm:"column:status;type:varchar(32);not null;index:idx_experiments_status" json:"status"`
	IsLongitudinal bool       `gorm:"column:is_longitudinal;not null" json:"is_longitudinal"`
	CreatedAt      time.Time  `gorm:"column:created_at;precision:3;not null" json:"created_at"`
	StartedAt      *time.Time `gorm:"column:started_at;precision:3" json:"started_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at;precision:3" json:"completed_at"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at;precision:3" json:"cancelled_at"`

	ProfileSet *ProfileSet `gorm:"foreignKey:ProfileSetID" json:"profile_set,omitempty"`
}

// TableName specifies the table name for Experiment
func (Experiment) TableName() string {
	return "experiments"
}

// ExperimentConfig MySQL model for experiment_configs table
// One (input system, instrument, provider) cell of an experiment's design
type ExperimentConfig struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExperimentID int64     `gorm:"column:experiment_id;not null;uniqueIndex:idx_experiment_configs_cell,priority:1" json:"experiment_id"`
	InputSystem  string    `gorm:"column:input_system;type:varchar(64);not null;uniqueIndex:idx_experiment_configs_cell,priority:2" json:"input_system"`
	Instrument   string    `gorm:"column:instrument;type:varchar(64);not null;uniqueIndex:idx_experiment_configs_cell,priority:3" json:"instrument"`
	Provider     string    `gorm:"column:provider;type:varchar(64);not null;uniqueIndex:idx_experiment_configs_cell,priority:4" json:"provider"`
	CreatedAt    time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for ExperimentConfig
func (ExperimentConfig) TableName() string {
	return "experiment_configs"
}

package model

import (
	"fmt"
	"time"
)

// ExperimentStatus experiment lifecycle status
type ExperimentStatus string

const (
	ExperimentStatusCreated   ExperimentStatus = "created"   // Expanded or awaiting expansion
	ExperimentStatusRunning   ExperimentStatus = "running"   // At least one unit claimed
	ExperimentStatusComplete  ExperimentStatus = "complete"  // No non-terminal units left
	ExperimentStatusCancelled ExperimentStatus = "cancelled" // Pending units will never be claimed
)

// ExperimentDefinition declarative factorial design submitted by a caller
type ExperimentDefinition struct {
	Name         string   `json:"name" yaml:"name" binding:"required"`
	Description  string   `json:"description" yaml:"description" binding:"required"`
	ProfileSet   string   `json:"profile_set" yaml:"profile_set" binding:"required"`
	Encodings    []string `json:"encodings" yaml:"encodings"`
	Instruments  []string `json:"instruments" yaml:"instruments"`
	Providers    []string `json:"providers" yaml:"providers"`
	Longitudinal bool     `json:"longitudinal" yaml:"longitudinal"`
}

// Validate checks the fields that do not need a store lookup
func (d *ExperimentDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidDefinition)
	}
	if d.ProfileSet == "" {
		return fmt.Errorf("%w: profile_set is required", ErrInvalidDefinition)
	}
	if len(d.Encodings) == 0 || len(d.Instruments) == 0 || len(d.Providers) == 0 {
		return fmt.Errorf("%w: encodings, instruments and providers must be non-empty", ErrEmptyDesign)
	}
	return nil
}

// ConfigCell one (encoding, instrument, provider) triple of an experiment
type ConfigCell struct {
	Encoding   string `json:"encoding"`
	Instrument string `json:"instrument"`
	Provider   string `json:"provider"`
}

// Cells returns the cross product of the definition's dimensions in a stable order
func (d *ExperimentDefinition) Cells() []ConfigCell {
	cells := make([]ConfigCell, 0, len(d.Encodings)*len(d.Instruments)*len(d.Providers))
	seen := make(map[ConfigCell]bool)
	for _, enc := range d.Encodings {
		for _, inst := range d.Instruments {
			for _, prov := range d.Providers {
				c := ConfigCell{Encoding: enc, Instrument: inst, Provider: prov}
				if seen[c] {
					continue
				}
				seen[c] = true
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// Experiment experiment view returned to callers
type Experiment struct {
	ID           int64            `json:"id"`
	Number       int              `json:"experiment_number"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	ProfileSet   string           `json:"profile_set"`
	Status       ExperimentStatus `json:"status"`
	Longitudinal bool             `json:"longitudinal"`
	Configs      []ConfigCell     `json:"configs,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	CancelledAt  *time.Time       `json:"cancelled_at,omitempty"`
}

// StatusCounts work unit counts per queue status
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Locked   int64 `json:"locked"`
	Running  int64 `json:"running"`
	Retry    int64 `json:"retry"`
	Complete int64 `json:"complete"`
	Failed   int64 `json:"failed"`
}

// Total sums every bucket
func (c StatusCounts) Total() int64 {
	return c.Pending + c.Locked + c.Running + c.Retry + c.Complete + c.Failed
}

// Outstanding counts units that have not reached a terminal state
func (c StatusCounts) Outstanding() int64 {
	return c.Pending + c.Locked + c.Running + c.Retry
}

// Add increments the bucket for status
func (c *StatusCounts) Add(status WorkUnitStatus, n int64) {
	switch status {
	case WorkUnitStatusPending:
		c.Pending += n
	case WorkUnitStatusLocked:
		c.Locked += n
	case WorkUnitStatusRunning:
		c.Running += n
	case WorkUnitStatusRetry:
		c.Retry += n
	case WorkUnitStatusComplete:
		c.Complete += n
	case WorkUnitStatusFailed:
		c.Failed += n
	}
}

// ExperimentSummary aggregate experiment status
type ExperimentSummary struct {
	Experiment *Experiment  `json:"experiment"`
	Counts     StatusCounts `json:"counts"`
	Total      int64        `json:"total"`
}

package mysql

import "surveyor/pkg/store/mysql/model"

// Re-export types from model package so callers need a single import
type (
	InputSystem      = model.InputSystem
	Provider         = model.Provider
	Instrument       = model.Instrument
	ProfileSet       = model.ProfileSet
	Profile          = model.Profile
	Experiment       = model.Experiment
	ExperimentConfig = model.ExperimentConfig
	WorkUnit         = model.WorkUnit
	Response         = model.Response
	Result           = model.Result

	FactorScores = model.FactorScores
)

package mysql

import (
	"surveyor/internal/model"
)

// ToExperimentDomain converts a stored experiment (and optional configs) to the domain view
func ToExperimentDomain(e *Experiment, configs []*ExperimentConfig) *model.Experiment {
	if e == nil {
		return nil
	}

	out := &model.Experiment{
		ID:           e.ID,
		Number:       e.Number,
		Name:         e.Name,
		Description:  e.Description,
		Status:       model.ExperimentStatus(e.Status),
		Longitudinal: e.IsLongitudinal,
		CreatedAt:    e.CreatedAt,
		StartedAt:    e.StartedAt,
		CompletedAt:  e.CompletedAt,
		CancelledAt:  e.CancelledAt,
	}
	if e.ProfileSet != nil {
		out.ProfileSet = e.ProfileSet.Name
	}
	for _, c := range configs {
		out.Configs = append(out.Configs, model.ConfigCell{
			Encoding:   c.InputSystem,
			Instrument: c.Instrument,
			Provider:   c.Provider,
		})
	}
	return out
}

// ToWorkUnitDomain converts a stored work unit to the domain view
func ToWorkUnitDomain(u *WorkUnit) *model.WorkUnit {
	if u == nil {
		return nil
	}

	return &model.WorkUnit{
		ID:           u.ID,
		ExperimentID: u.ExperimentID,
		Snapshot:     SnapshotOf(u),
		Status:       model.WorkUnitStatus(u.Status),
		Attempts:     u.Attempts,
		WorkerID:     u.WorkerID,
		PromptSent:   u.PromptSent,
		ErrorMessage: u.ErrorMessage,
		CreatedAt:    u.CreatedAt,
		LockedAt:     u.LockedAt,
		StartedAt:    u.StartedAt,
		CompletedAt:  u.CompletedAt,
	}
}

// SnapshotOf extracts the self-describing dimensions of a stored unit
func SnapshotOf(u *WorkUnit) model.UnitSnapshot {
	return model.UnitSnapshot{
		Encoding:   u.InputSystem,
		Instrument: u.Instrument,
		Provider:   u.Provider,
		Profile: model.Profile{
			Index: u.ProfileIndex,
			Label: u.ProfileLabel,
			Traits: model.Traits{
				Openness:          u.Openness,
				Conscientiousness: u.Conscientiousness,
				Extraversion:      u.Extraversion,
				Agreeableness:     u.Agreeableness,
				Neuroticism:       u.Neuroticism,
			},
		},
		Longitudinal: u.IsLongitudinal,
	}
}

// FromSnapshot builds a pending work unit row from a config cell and a profile snapshot
func FromSnapshot(experimentID, configID int64, s model.UnitSnapshot) *WorkUnit {
	return &WorkUnit{
		ExperimentID:       experimentID,
		ExperimentConfigID: configID,
		InputSystem:        s.Encoding,
		Instrument:         s.Instrument,
		Provider:           s.Provider,
		ProfileIndex:       s.Profile.Index,
		ProfileLabel:       s.Profile.Label,
		Openness:           s.Profile.Openness,
		Conscientiousness:  s.Profile.Conscientiousness,
		Extraversion:       s.Profile.Extraversion,
		Agreeableness:      s.Profile.Agreeableness,
		Neuroticism:        s.Profile.Neuroticism,
		IsLongitudinal:     s.Longitudinal,
	}
}

// ToProfileDomain converts a stored profile to its value object
func ToProfileDomain(p *Profile) model.Profile {
	return model.Profile{
		Index: p.Index,
		Label: p.Label,
		Traits: model.Traits{
			Openness:          p.Openness,
			Conscientiousness: p.Conscientiousness,
			Extraversion:      p.Extraversion,
			Agreeableness:     p.Agreeableness,
			Neuroticism:       p.Neuroticism,
		},
	}
}

// FromProfileDomain converts a profile value object to a row
func FromProfileDomain(p model.Profile) Profile {
	return Profile{
		Index:             p.Index,
		Label:             p.Label,
		Openness:          p.Openness,
		Conscientiousness: p.Conscientiousness,
		Extraversion:      p.Extraversion,
		Agreeableness:     p.Agreeableness,
		Neuroticism:       p.Neuroticism,
	}
}

// FromItemResponse converts a scored item to a response row
func FromItemResponse(r model.ItemResponse) *Response {
	return &Response{
		QuestionNumber:    r.QuestionNumber,
		QuestionText:      r.QuestionText,
		Factor:            r.Factor,
		IsReversed:        r.IsReversed,
		RawResponse:       r.RawResponse,
		ParsedScore:       r.ParsedScore,
		ScoreAfterReverse: r.ScoreAfterReverse,
		ResponseTimeMs:    r.ResponseTimeMs,
		SequencePosition:  r.SequencePosition,
		PromptTokens:      r.PromptTokens,
	}
}

// FromUnitResult converts aggregated scores to a result row
func FromUnitResult(r model.UnitResult) *Result {
	return &Result{
		TotalScore:        r.TotalScore,
		FactorScores:      FactorScores(r.FactorScores),
		QuestionsAnswered: r.QuestionsAnswered,
		QuestionsTotal:    r.QuestionsTotal,
		DurationMs:        r.DurationMs,
	}
}

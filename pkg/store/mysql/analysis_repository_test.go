package mysql

import (
	"context"
	"errors"
	"testing"

	"surveyor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeWith(t *testing.T, repo *Repository, provider string, total *float64, scores ...int) {
	t.Helper()

	unit := claimAndBegin(t, repo, provider, "w-"+provider)
	var responses []*Response
	for i, s := range scores {
		s := s
		responses = append(responses, &Response{
			QuestionNumber:    i + 1,
			QuestionText:      "q",
			Factor:            "depression",
			RawResponse:       "x",
			ParsedScore:       &s,
			ScoreAfterReverse: &s,
		})
	}
	result := &Result{TotalScore: total, FactorScores: FactorScores{}, QuestionsAnswered: len(scores), QuestionsTotal: 9}
	if total != nil {
		result.FactorScores["depression"] = *total
	}
	require.NoError(t, repo.WorkUnit.Complete(context.Background(), unit.ID, unit.WorkerID, responses, result))
}

func ptr(v float64) *float64 { return &v }

func TestAnalysis_ListAndSummarize(t *testing.T) {
	repo := newTestRepository(t)
	exp := seedExperiment(t, repo, 2, "providerA", "providerB")
	ctx := context.Background()

	completeWith(t, repo, "providerA", ptr(10), 4, 6)
	completeWith(t, repo, "providerA", ptr(20), 5, 5, 5, 5)
	completeWith(t, repo, "providerB", nil)

	results, err := repo.Analysis.ListResults(ctx, model.AnalysisFilter{ExperimentID: exp.ID})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "ocean_direct", results[0].Encoding)
	assert.Equal(t, "phq9", results[0].Instrument)
	assert.Equal(t, 50, results[0].Traits.Openness)
	assert.Equal(t, map[string]float64{"depression": 10}, results[0].FactorScores)
	assert.Nil(t, results[2].TotalScore)

	onlyB, err := repo.Analysis.ListResults(ctx, model.AnalysisFilter{ExperimentID: exp.ID, Provider: "providerB"})
	require.NoError(t, err)
	assert.Len(t, onlyB, 1)

	items, err := repo.Analysis.ListItemScores(ctx, model.AnalysisFilter{Provider: "providerA"})
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, "ocean_direct", items[0].Encoding)
	assert.Equal(t, 1, items[0].QuestionNumber)
	require.NotNil(t, items[0].ScoreAfterReverse)
	assert.Equal(t, 4, *items[0].ScoreAfterReverse)

	summary, err := repo.Analysis.Summarize(ctx, model.AnalysisFilter{ExperimentID: exp.ID},
		[]model.Dimension{model.DimensionProvider})
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "providerA", summary[0].Group[model.DimensionProvider])
	assert.Equal(t, int64(2), summary[0].Count)
	require.NotNil(t, summary[0].MeanTotal)
	assert.InDelta(t, 15.0, *summary[0].MeanTotal, 1e-9)

	assert.Equal(t, "providerB", summary[1].Group[model.DimensionProvider])
	assert.Equal(t, int64(1), summary[1].Count)
	assert.Equal(t, int64(0), summary[1].Scored)
	assert.Nil(t, summary[1].MeanTotal)

	overall, err := repo.Analysis.Summarize(ctx, model.AnalysisFilter{ExperimentID: exp.ID}, nil)
	require.NoError(t, err)
	require.Len(t, overall, 1)
	assert.Equal(t, int64(3), overall[0].Count)

	_, err = repo.Analysis.Summarize(ctx, model.AnalysisFilter{}, []model.Dimension{"favourite_colour"})
	assert.True(t, errors.Is(err, model.ErrInvalidGroupBy))
}

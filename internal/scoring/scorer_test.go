package scoring

import (
	"testing"

	"surveyor/internal/instrument"
	"surveyor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"plain digit", "4", intPtr(4)},
		{"whitespace", "  2\n", intPtr(2)},
		{"trailing period", "5.", intPtr(5)},
		{"sentence", "I would say 3 here", intPtr(3)},
		{"first in-scale digit", "0 or maybe 4", intPtr(4)},
		{"off-scale whole number falls back to digits", "10", intPtr(1)},
		{"no digits", "Strongly agree", nil},
		{"empty", "", nil},
		{"only off-scale digits", "0 9", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScore(tt.text, instrument.LikertFive)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_PHQ9(t *testing.T) {
	inst, ok := instrument.NewDefaultRegistry().Get("phq9")
	require.True(t, ok)

	parsed := []int{3, 2, 4, 1, 5, 2, 3, 4, 2}
	answers := make(map[int]int)
	for i, item := range inst.Items {
		answers[item.Number] = parsed[i]
	}

	result := Score(inst, answers)
	require.NotNil(t, result.TotalScore)
	assert.Equal(t, 26.0, *result.TotalScore)
	assert.Equal(t, 9, result.QuestionsAnswered)
	assert.Equal(t, 9, result.QuestionsTotal)
	assert.Equal(t, map[string]float64{"depression": 26}, result.FactorScores)
}

func TestScore_PartialAnswers(t *testing.T) {
	inst := &instrument.Instrument{
		ShortName:   "split",
		Scale:       instrument.LikertFive,
		Aggregation: instrument.AggregateMean,
		Items: []instrument.Item{
			{Number: 1, Factor: "a"},
			{Number: 2, Factor: "a", Reversed: true},
			{Number: 3, Factor: "a"},
			{Number: 4, Factor: "b"},
			{Number: 5, Factor: "b"},
			{Number: 6, Factor: "b", Reversed: true},
			{Number: 7, Factor: "c"},
			{Number: 8, Factor: "c"},
			{Number: 9, Factor: "c"},
		},
	}
	// items 3 and 9 unanswered
	answers := map[int]int{1: 5, 2: 1, 4: 2, 5: 4, 6: 2, 7: 3, 8: 5}

	result := Score(inst, answers)

	assert.Equal(t, 7, result.QuestionsAnswered)
	assert.Equal(t, 9, result.QuestionsTotal)
	assert.Equal(t, map[string]float64{
		"a": 5.0,        // 5, 6-1
		"b": 10.0 / 3.0, // 2, 4, 6-2
		"c": 4.0,        // 3, 5
	}, result.FactorScores)
	require.NotNil(t, result.TotalScore)
	assert.InDelta(t, 28.0/7.0, *result.TotalScore, 1e-9)
}

func TestScore_NothingAnswered(t *testing.T) {
	inst, _ := instrument.NewDefaultRegistry().Get("gad7")

	result := Score(inst, map[int]int{})

	assert.Nil(t, result.TotalScore)
	assert.Empty(t, result.FactorScores)
	assert.Equal(t, 0, result.QuestionsAnswered)
	assert.Equal(t, 7, result.QuestionsTotal)
}

func TestScoreItem(t *testing.T) {
	inst, _ := instrument.NewDefaultRegistry().Get("bfi")
	reserved := inst.Items[1] // "Is reserved"
	require.True(t, reserved.Reversed)

	resp := ScoreItem(inst, reserved, "2")
	assert.Equal(t, 6, resp.QuestionNumber)
	assert.Equal(t, intPtr(2), resp.ParsedScore)
	assert.Equal(t, intPtr(4), resp.ScoreAfterReverse)

	missing := ScoreItem(inst, reserved, "I'd rather not say")
	assert.Nil(t, missing.ParsedScore)
	assert.Nil(t, missing.ScoreAfterReverse)
	assert.Equal(t, "I'd rather not say", missing.RawResponse)
}

func TestScoreResponses_SkipsUnparsed(t *testing.T) {
	inst, _ := instrument.NewDefaultRegistry().Get("phq3_a")
	responses := []model.ItemResponse{
		ScoreItem(inst, inst.Items[0], "4"),
		ScoreItem(inst, inst.Items[1], "n/a"),
		ScoreItem(inst, inst.Items[2], "2"),
	}

	result := ScoreResponses(inst, responses)
	assert.Equal(t, 2, result.QuestionsAnswered)
	require.NotNil(t, result.TotalScore)
	assert.Equal(t, 6.0, *result.TotalScore)
}

func intPtr(v int) *int {
	return &v
}

package scoring

import (
	"strconv"
	"strings"

	"surveyor/internal/instrument"
	"surveyor/internal/model"
)

// ParseScore extracts a score on scale from free provider text.
// A whole-string integer wins, otherwise the first in-scale digit is used.
// Returns nil when nothing on the scale can be found.
func ParseScore(text string, scale instrument.Scale) *int {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.NewReplacer(".", "", ",", "").Replace(cleaned)

	if v, err := strconv.Atoi(cleaned); err == nil {
		if scale.Contains(v) {
			return &v
		}
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			continue
		}
		v := int(r - '0')
		if scale.Contains(v) {
			return &v
		}
	}
	return nil
}

// ApplyReverse returns the post-reverse score of an item
func ApplyReverse(score int, item instrument.Item, scale instrument.Scale) int {
	if item.Reversed {
		return scale.Reverse(score)
	}
	return score
}

// ScoreItem parses raw text for one item and fills the response scores
func ScoreItem(inst *instrument.Instrument, item instrument.Item, raw string) model.ItemResponse {
	resp := model.ItemResponse{
		QuestionNumber: item.Number,
		QuestionText:   item.Text,
		Factor:         item.Factor,
		IsReversed:     item.Reversed,
		RawResponse:    raw,
	}
	if parsed := ParseScore(raw, inst.Scale); parsed != nil {
		after := ApplyReverse(*parsed, item, inst.Scale)
		resp.ParsedScore = parsed
		resp.ScoreAfterReverse = &after
	}
	return resp
}

// Score aggregates parsed answers (question number -> parsed score) into factor
// and total scores. Unknown question numbers and off-scale values are ignored.
// With zero answered items the total is nil and the factor map is empty.
func Score(inst *instrument.Instrument, answers map[int]int) model.UnitResult {
	type acc struct {
		sum   int
		count int
	}

	factors := make(map[string]*acc)
	var total acc
	for _, item := range inst.Items {
		parsed, ok := answers[item.Number]
		if !ok || !inst.Scale.Contains(parsed) {
			continue
		}
		score := ApplyReverse(parsed, item, inst.Scale)

		f, ok := factors[item.Factor]
		if !ok {
			f = &acc{}
			factors[item.Factor] = f
		}
		f.sum += score
		f.count++
		total.sum += score
		total.count++
	}

	aggregate := func(a *acc) float64 {
		if inst.Aggregation == instrument.AggregateMean {
			return float64(a.sum) / float64(a.count)
		}
		return float64(a.sum)
	}

	result := model.UnitResult{
		FactorScores:      make(map[string]float64, len(factors)),
		QuestionsAnswered: total.count,
		QuestionsTotal:    inst.ItemCount(),
	}
	for name, f := range factors {
		result.FactorScores[name] = aggregate(f)
	}
	if total.count > 0 {
		t := aggregate(&total)
		result.TotalScore = &t
	}
	return result
}

// ScoreResponses aggregates already scored item responses
func ScoreResponses(inst *instrument.Instrument, responses []model.ItemResponse) model.UnitResult {
	answers := make(map[int]int, len(responses))
	for _, r := range responses {
		if r.ParsedScore != nil {
			answers[r.QuestionNumber] = *r.ParsedScore
		}
	}
	return Score(inst, answers)
}

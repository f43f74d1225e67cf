package instrument

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name        string
		items       int
		reversed    int
		factors     []string
		aggregation Aggregation
	}{
		{"levenson", 26, 7, []string{"primary", "secondary"}, AggregateMean},
		{"bfi", 44, 16, []string{"extraversion", "agreeableness", "conscientiousness", "neuroticism", "openness"}, AggregateMean},
		{"dark_triad", 27, 5, []string{"machiavellianism", "narcissism", "psychopathy"}, AggregateMean},
		{"phq9", 9, 0, []string{"depression"}, AggregateSum},
		{"gad7", 7, 0, []string{"anxiety"}, AggregateSum},
		{"phq6_bc", 6, 0, []string{"behavioral", "cognitive"}, AggregateSum},
		{"phq3_a", 3, 0, []string{"affect"}, AggregateSum},
	}

	assert.Len(t, r.Names(), len(tests))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := r.Get(tt.name)
			require.True(t, ok)

			reversed := 0
			for _, item := range inst.Items {
				if item.Reversed {
					reversed++
				}
			}
			assert.Equal(t, tt.items, inst.ItemCount())
			assert.Equal(t, tt.reversed, reversed)
			assert.Equal(t, tt.factors, inst.Factors())
			assert.Equal(t, tt.aggregation, inst.Aggregation)
			assert.Equal(t, LikertFive, inst.Scale)
		})
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	inst := Instrument{
		ShortName:   "mini",
		Scale:       LikertFive,
		Aggregation: AggregateSum,
		Items:       []Item{{Number: 1, Text: "q", Factor: "f"}},
	}

	require.NoError(t, r.Register(inst))
	err := r.Register(inst)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestRegistry_Immutable(t *testing.T) {
	r := NewRegistry()
	items := []Item{{Number: 1, Text: "original", Factor: "f"}}
	require.NoError(t, r.Register(Instrument{ShortName: "mini", Scale: LikertFive, Aggregation: AggregateSum, Items: items}))

	items[0].Text = "changed by caller"
	got, _ := r.Get("mini")
	assert.Equal(t, "original", got.Items[0].Text)

	got.Items[0].Text = "changed by reader"
	again, _ := r.Get("mini")
	assert.Equal(t, "original", again.Items[0].Text)
}

func TestInstrument_Validate(t *testing.T) {
	tests := []struct {
		name string
		inst Instrument
	}{
		{"no name", Instrument{Scale: LikertFive, Aggregation: AggregateSum, Items: []Item{{Number: 1, Factor: "f"}}}},
		{"no items", Instrument{ShortName: "x", Scale: LikertFive, Aggregation: AggregateSum}},
		{"bad scale", Instrument{ShortName: "x", Scale: Scale{Min: 5, Max: 1}, Aggregation: AggregateSum, Items: []Item{{Number: 1, Factor: "f"}}}},
		{"bad aggregation", Instrument{ShortName: "x", Scale: LikertFive, Aggregation: "median", Items: []Item{{Number: 1, Factor: "f"}}}},
		{"duplicate number", Instrument{ShortName: "x", Scale: LikertFive, Aggregation: AggregateSum, Items: []Item{{Number: 1, Factor: "f"}, {Number: 1, Factor: "f"}}}},
		{"missing factor", Instrument{ShortName: "x", Scale: LikertFive, Aggregation: AggregateSum, Items: []Item{{Number: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.inst.Validate())
		})
	}
}

func TestScale_Reverse(t *testing.T) {
	for v := 1; v <= 5; v++ {
		assert.Equal(t, 6-v, LikertFive.Reverse(v))
	}
	assert.Equal(t, 3, Scale{Min: 0, Max: 3}.Reverse(0))
}

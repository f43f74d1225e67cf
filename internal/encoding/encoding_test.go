package encoding

import (
	"testing"

	"surveyor/internal/instrument"
	"surveyor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOceanDirect_Preamble(t *testing.T) {
	text := OceanDirect{}.Preamble(model.Traits{
		Openness: 50, Conscientiousness: 0, Extraversion: 0, Agreeableness: 0, Neuroticism: 50,
	})

	assert.Contains(t, text, "- Openness: 50/100\n")
	assert.Contains(t, text, "- Conscientiousness: 0/100\n")
	assert.Contains(t, text, "- Neuroticism: 50/100\n")
}

func TestSystemPrompt(t *testing.T) {
	inst, ok := instrument.NewDefaultRegistry().Get("phq9")
	require.True(t, ok)

	prompt := SystemPrompt(OceanDirect{}, model.Traits{}, inst)
	assert.Contains(t, prompt, "Based on these personality traits, rate how often you have been bothered")
}

func TestItemPrompt(t *testing.T) {
	item := instrument.Item{Number: 1, Text: "Is talkative", Factor: "extraversion"}

	assert.Equal(t,
		"Statement: \"Is talkative\"\n\nRespond with ONLY a single number (1, 2, 3, 4, or 5).",
		ItemPrompt(item, instrument.LikertFive))
	assert.Contains(t, ItemPrompt(item, instrument.Scale{Min: 0, Max: 1}), "(0, or 1)")
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	_, ok := r.Get("ocean_direct")
	assert.True(t, ok)
	_, ok = r.Get("narrative")
	assert.False(t, ok)
	assert.Equal(t, []string{"ocean_direct"}, r.Names())
}

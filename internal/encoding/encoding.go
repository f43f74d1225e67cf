package encoding

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"surveyor/internal/instrument"
	"surveyor/internal/model"
)

// Encoder renders a trait profile into persona text
type Encoder interface {
	Name() string
	Preamble(traits model.Traits) string
}

// Registry encoders keyed by name
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates a registry with the given encoders
func NewRegistry(encoders ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, e := range encoders {
		r.encoders[e.Name()] = e
	}
	return r
}

// NewDefaultRegistry registry with the built-in encoders
func NewDefaultRegistry() *Registry {
	return NewRegistry(OceanDirect{})
}

// Register adds or replaces an encoder
func (r *Registry) Register(e Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[e.Name()] = e
}

// Get looks up an encoder by name
func (r *Registry) Get(name string) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.encoders[name]
	return e, ok
}

// Names sorted encoder names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemPrompt persona preamble followed by the instrument's scale instructions
func SystemPrompt(e Encoder, traits model.Traits, inst *instrument.Instrument) string {
	return fmt.Sprintf("%s\n\nBased on these personality traits, %s", e.Preamble(traits), inst.Instructions)
}

// ItemPrompt the per-item user message
func ItemPrompt(item instrument.Item, scale instrument.Scale) string {
	return fmt.Sprintf("Statement: %q\n\nRespond with ONLY a single number (%s).", item.Text, choices(scale))
}

// choices renders 1..5 as "1, 2, 3, 4, or 5"
func choices(scale instrument.Scale) string {
	values := make([]string, 0, scale.Max-scale.Min+1)
	for v := scale.Min; v <= scale.Max; v++ {
		values = append(values, strconv.Itoa(v))
	}
	if len(values) == 1 {
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + ", or " + values[len(values)-1]
}

// OceanDirect renders each trait as an explicit 0-100 score
type OceanDirect struct{}

func (OceanDirect) Name() string { return "ocean_direct" }

func (OceanDirect) Preamble(t model.Traits) string {
	var b strings.Builder
	b.WriteString("You have the following personality traits on a scale of 0-100:\n\n")
	fmt.Fprintf(&b, "- Openness: %d/100\n", t.Openness)
	fmt.Fprintf(&b, "- Conscientiousness: %d/100\n", t.Conscientiousness)
	fmt.Fprintf(&b, "- Extraversion: %d/100\n", t.Extraversion)
	fmt.Fprintf(&b, "- Agreeableness: %d/100\n", t.Agreeableness)
	fmt.Fprintf(&b, "- Neuroticism: %d/100\n\n", t.Neuroticism)
	b.WriteString("Based on these personality traits, rate the following statement.")
	return b.String()
}

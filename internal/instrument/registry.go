package instrument

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicate an instrument with the same short name is already registered
var ErrDuplicate = errors.New("instrument already registered")

// Registry holds immutable instrument definitions keyed by short name
type Registry struct {
	mu          sync.RWMutex
	instruments map[string]Instrument
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{instruments: make(map[string]Instrument)}
}

// Register adds an instrument. The registry keeps its own copy.
func (r *Registry) Register(inst Instrument) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[inst.ShortName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, inst.ShortName)
	}
	r.instruments[inst.ShortName] = inst.clone()
	return nil
}

// Get returns a copy of the named instrument
func (r *Registry) Get(shortName string) (*Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instruments[shortName]
	if !ok {
		return nil, false
	}
	c := inst.clone()
	return &c, true
}

// Has reports whether shortName is registered
func (r *Registry) Has(shortName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.instruments[shortName]
	return ok
}

// Names sorted short names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instruments))
	for name := range r.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns copies of every instrument sorted by short name
func (r *Registry) List() []Instrument {
	names := r.Names()
	list := make([]Instrument, 0, len(names))
	for _, name := range names {
		if inst, ok := r.Get(name); ok {
			list = append(list, *inst)
		}
	}
	return list
}

// NewDefaultRegistry returns a registry preloaded with the built-in instruments
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, inst := range builtins() {
		if err := r.Register(inst); err != nil {
			panic(fmt.Sprintf("built-in instrument %s: %v", inst.ShortName, err))
		}
	}
	return r
}

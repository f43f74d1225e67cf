package instrument

import (
	"fmt"
)

// Aggregation how item scores combine into factor and total scores
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
)

// Scale inclusive response range of an instrument
type Scale struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// LikertFive the 1..5 scale used by every built-in instrument
var LikertFive = Scale{Min: 1, Max: 5}

// Contains reports whether v lies within the scale
func (s Scale) Contains(v int) bool {
	return v >= s.Min && v <= s.Max
}

// Reverse reflects v across the scale midpoint, e.g. 6-v on 1..5
func (s Scale) Reverse(v int) int {
	return s.Min + s.Max - v
}

// Item a single question
type Item struct {
	Number   int    `json:"number"`
	Text     string `json:"text"`
	Factor   string `json:"factor"`
	Reversed bool   `json:"is_reversed"`
}

// Instrument a fixed questionnaire. Items are administered in slice order.
type Instrument struct {
	ShortName    string      `json:"short_name"`
	FullName     string      `json:"full_name"`
	Items        []Item      `json:"items"`
	Scale        Scale       `json:"scale"`
	Aggregation  Aggregation `json:"aggregation"`
	Instructions string      `json:"scale_instructions"`
}

// ItemCount number of items
func (i *Instrument) ItemCount() int {
	return len(i.Items)
}

// Factors distinct factor labels in order of first appearance
func (i *Instrument) Factors() []string {
	var factors []string
	seen := make(map[string]bool)
	for _, item := range i.Items {
		if !seen[item.Factor] {
			seen[item.Factor] = true
			factors = append(factors, item.Factor)
		}
	}
	return factors
}

// Validate checks structural rules before registration
func (i *Instrument) Validate() error {
	if i.ShortName == "" {
		return fmt.Errorf("instrument short name is required")
	}
	if len(i.Items) == 0 {
		return fmt.Errorf("instrument %s has no items", i.ShortName)
	}
	if i.Scale.Min >= i.Scale.Max {
		return fmt.Errorf("instrument %s: invalid scale %d..%d", i.ShortName, i.Scale.Min, i.Scale.Max)
	}
	switch i.Aggregation {
	case AggregateSum, AggregateMean:
	default:
		return fmt.Errorf("instrument %s: unsupported aggregation %q", i.ShortName, i.Aggregation)
	}

	numbers := make(map[int]bool, len(i.Items))
	for _, item := range i.Items {
		if numbers[item.Number] {
			return fmt.Errorf("instrument %s: duplicate question number %d", i.ShortName, item.Number)
		}
		numbers[item.Number] = true
		if item.Factor == "" {
			return fmt.Errorf("instrument %s: question %d has no factor", i.ShortName, item.Number)
		}
	}
	return nil
}

func (i Instrument) clone() Instrument {
	items := make([]Item, len(i.Items))
	copy(items, i.Items)
	i.Items = items
	return i
}

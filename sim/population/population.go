// Package population describes the weighted entities a simulation samples
// from: explicit items, synthetic items drawn from a count distribution, or
// both.
package population

import (
	"fmt"
	"math/rand"
)

// Item is one weighted, shape-tagged outcome.
type Item struct {
	Label  string
	Count  int64
	Shapes []string
}

// Spec is the population section of a scenario.
type Spec struct {
	Items     []ItemSpec     `yaml:"items,omitempty"`
	Synthetic *SyntheticSpec `yaml:"synthetic,omitempty"`
}

// ItemSpec declares one explicit item.
type ItemSpec struct {
	Label  string   `yaml:"label"`
	Count  int64    `yaml:"count"`
	Shapes []string `yaml:"shapes,omitempty"`
}

// SyntheticSpec generates Count items labeled LabelPrefix_N.
type SyntheticSpec struct {
	Count       int         `yaml:"count"`
	LabelPrefix string      `yaml:"label_prefix"`
	CountDist   DistSpec    `yaml:"count_distribution"`
	Shapes      []ShapeSpec `yaml:"shapes,omitempty"`
}

// ShapeSpec tags each synthetic item with Name independently with
// probability Fraction.
type ShapeSpec struct {
	Name     string  `yaml:"name"`
	Fraction float64 `yaml:"fraction"`
}

// DistSpec parameterizes a count distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Validate checks the spec without generating anything.
func (s *Spec) Validate() error {
	if len(s.Items) == 0 && s.Synthetic == nil {
		return fmt.Errorf("population needs items or a synthetic section")
	}
	seen := make(map[string]bool, len(s.Items))
	for i, it := range s.Items {
		if it.Label == "" {
			return fmt.Errorf("items[%d]: label is required", i)
		}
		if seen[it.Label] {
			return fmt.Errorf("items[%d]: duplicate label %q", i, it.Label)
		}
		seen[it.Label] = true
		if it.Count < 0 {
			return fmt.Errorf("items[%d]: count must be >= 0, got %d", i, it.Count)
		}
	}
	if syn := s.Synthetic; syn != nil {
		if syn.Count <= 0 {
			return fmt.Errorf("synthetic: count must be positive, got %d", syn.Count)
		}
		if syn.LabelPrefix == "" {
			return fmt.Errorf("synthetic: label_prefix is required")
		}
		if _, err := NewCountSampler(syn.CountDist); err != nil {
			return fmt.Errorf("synthetic: count_distribution: %w", err)
		}
		for i, sh := range syn.Shapes {
			if sh.Name == "" {
				return fmt.Errorf("synthetic: shapes[%d]: name is required", i)
			}
			if sh.Fraction < 0 || sh.Fraction > 1 {
				return fmt.Errorf("synthetic: shapes[%d]: fraction must be in [0,1], got %v", i, sh.Fraction)
			}
		}
	}
	return nil
}

// Generate materializes the population: explicit items first, in order, then
// synthetic items. Deterministic for a given rng state.
func Generate(spec Spec, rng *rand.Rand) ([]Item, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(spec.Items))
	explicit := make(map[string]bool, len(spec.Items))
	for _, it := range spec.Items {
		explicit[it.Label] = true
		items = append(items, Item{Label: it.Label, Count: it.Count, Shapes: append([]string(nil), it.Shapes...)})
	}
	if syn := spec.Synthetic; syn != nil {
		sampler, err := NewCountSampler(syn.CountDist)
		if err != nil {
			return nil, err
		}
		for i := 0; i < syn.Count; i++ {
			label := fmt.Sprintf("%s_%d", syn.LabelPrefix, i)
			if explicit[label] {
				return nil, fmt.Errorf("synthetic label %q collides with an explicit item", label)
			}
			item := Item{Label: label, Count: sampler.Sample(rng)}
			for _, sh := range syn.Shapes {
				if rng.Float64() < sh.Fraction {
					item.Shapes = append(item.Shapes, sh.Name)
				}
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// Total returns the sum of positive counts.
func Total(items []Item) int64 {
	var total int64
	for _, it := range items {
		if it.Count > 0 {
			total += it.Count
		}
	}
	return total
}

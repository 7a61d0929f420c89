package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/agentsim/sim"
	"github.com/inference-sim/agentsim/sim/population"
	"github.com/inference-sim/agentsim/sim/trace"
)

// Scenario is the top-level YAML configuration for a run.
// Unset numeric fields fall back to sim.DefaultSimConfig.
type Scenario struct {
	Seed             *int64          `yaml:"seed,omitempty"`
	Steps            int             `yaml:"steps,omitempty"`
	DrawsPerStep     int             `yaml:"draws_per_step,omitempty"`
	Workers          int             `yaml:"workers,omitempty"`
	ShelfCapacity    int             `yaml:"shelf_capacity,omitempty"`
	FreeListCapacity *int            `yaml:"free_list_capacity,omitempty"`
	MaxChunkSize     int             `yaml:"max_chunk_size,omitempty"`
	Trace            string          `yaml:"trace,omitempty"`
	Population       population.Spec `yaml:"population"`
}

// LoadScenario reads a scenario file with strict field checking: unknown
// keys are errors so typos do not silently fall back to defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// SimConfig merges the scenario over the engine defaults.
func (sc *Scenario) SimConfig() sim.SimConfig {
	cfg := sim.DefaultSimConfig()
	if sc.Seed != nil {
		cfg.Seed = *sc.Seed
	}
	if sc.Steps != 0 {
		cfg.Steps = sc.Steps
	}
	if sc.DrawsPerStep != 0 {
		cfg.DrawsPerStep = sc.DrawsPerStep
	}
	if sc.Workers != 0 {
		cfg.Workers = sc.Workers
	}
	if sc.ShelfCapacity != 0 {
		cfg.ShelfCapacity = sc.ShelfCapacity
	}
	if sc.FreeListCapacity != nil {
		cfg.FreeListCapacity = *sc.FreeListCapacity
	}
	if sc.MaxChunkSize != 0 {
		cfg.MaxChunkSize = sc.MaxChunkSize
	}
	if sc.Trace != "" {
		cfg.TraceLevel = trace.TraceLevel(sc.Trace)
	}
	return cfg
}

// Resolve merges the scenario over the engine defaults, applies override
// (if non-nil) and validates the result together with the population section.
func (sc *Scenario) Resolve(override func(*sim.SimConfig)) (sim.SimConfig, error) {
	cfg := sc.SimConfig()
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return sim.SimConfig{}, err
	}
	if err := sc.Population.Validate(); err != nil {
		return sim.SimConfig{}, fmt.Errorf("population: %w", err)
	}
	return cfg, nil
}

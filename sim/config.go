package sim

import (
	"fmt"

	"github.com/inference-sim/agentsim/sim/trace"
)

// SimConfig groups engine parameters for NewSimulator.
type SimConfig struct {
	Seed             int64            // master seed for every RNG subsystem
	Steps            int              // number of steps Run executes (must be > 0)
	DrawsPerStep     int              // draws attempted per step (must be > 0)
	Workers          int              // goroutines recording and iterating chunks (must be > 0)
	ShelfCapacity    int              // bins per shelf (must be > 0)
	FreeListCapacity int              // recycled entity ids kept (>= 0; 0 disables recycling)
	MaxChunkSize     int              // ids per parallel work unit (must be > 0)
	TraceLevel       trace.TraceLevel // "none" (default), "steps" or "draws"
}

// DefaultSimConfig returns the configuration used when a scenario leaves
// fields unset.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Seed:             42,
		Steps:            10,
		DrawsPerStep:     100,
		Workers:          4,
		ShelfCapacity:    256,
		FreeListCapacity: 1 << 16,
		MaxChunkSize:     1024,
		TraceLevel:       trace.TraceLevelNone,
	}
}

// Validate returns the first invalid field.
func (c SimConfig) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be > 0, got %d", c.Steps)
	}
	if c.DrawsPerStep <= 0 {
		return fmt.Errorf("draws_per_step must be > 0, got %d", c.DrawsPerStep)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if c.ShelfCapacity <= 0 {
		return fmt.Errorf("shelf_capacity must be > 0, got %d", c.ShelfCapacity)
	}
	if c.FreeListCapacity < 0 {
		return fmt.Errorf("free_list_capacity must be >= 0, got %d", c.FreeListCapacity)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be > 0, got %d", c.MaxChunkSize)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q; valid: none, steps, draws", c.TraceLevel)
	}
	return nil
}

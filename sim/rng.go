package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible run. Two runs with the same key and
// the same scenario draw the same labels in the same order.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemSampling drives weighted draws. It uses the master seed directly.
	SubsystemSampling = "sampling"

	// SubsystemPermutation orders shape visits and record fan-out per step.
	SubsystemPermutation = "permutation"

	// SubsystemPopulation generates synthetic populations.
	SubsystemPopulation = "population"
)

// PartitionedRNG hands out one deterministic *rand.Rand per subsystem so that
// drawing more values in one subsystem never shifts another's sequence.
//
// Derivation:
//   - SubsystemSampling: the master seed
//   - everything else: master seed XOR fnv1a64(name)
//
// Not safe for concurrent use. All draws happen on the stepping goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached RNG for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	seed := int64(p.key)
	if name != SubsystemSampling {
		seed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(seed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

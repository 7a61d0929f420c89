// Package sim provides the step-driven sampling engine for agentsim.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - simulator.go: one step is refill, sample, record, iterate and release
//   - permutation.go: seeded full-period permutations used to order shapes and writers
//   - rng.go: PartitionedRNG, one deterministic stream per subsystem
//
// # Architecture
//
// The sim package wires the building blocks that live in sub-packages:
//   - sim/binpool/: weighted bins, shelves, pools and pools grouped by shape
//   - sim/ids/: bounded concurrent stack and recycling entity-id allocator
//   - sim/chunk/: concurrent (id, label) recording and the chunked index it builds
//   - sim/population/: explicit and synthetic populations from scenario YAML
//   - sim/trace/: draw and step trace recording
//
// Engine metrics are registered on a caller-supplied prometheus.Registerer;
// see metrics.go.
package sim

// Package trace records what a simulation drew and how each step's chunked
// index came out. It has no dependencies on sim/ and stores pure data types.
package trace

// DrawRecord captures one weighted draw.
type DrawRecord struct {
	Step     int
	Seq      int    // draw number within the step
	Shape    string // shape pool drawn from; empty for the all-pool
	Label    string
	EntityID int32
	Recycled bool // EntityID came from the free-list
}

// StepRecord captures the outcome of one simulation step.
type StepRecord struct {
	Step         int
	Draws        int
	Chunks       int
	MaxChunkSize int
	DistinctIDs  uint64
	PoolTotal    int64 // all-pool total left after the step's draws
}

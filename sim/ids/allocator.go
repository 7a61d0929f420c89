package ids

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Allocator hands out integer identifiers, reusing freed ones before minting
// new values from a monotonic counter. Safe for concurrent use.
//
// Every id in [0, Count()) is either live or on the free-list exactly once,
// except ids dropped because the free-list was full: those are leaked and
// never handed out again.
type Allocator[T constraints.Integer] struct {
	free     *Stack[T]
	issued   atomic.Int64
	recycled atomic.Int64
	dropped  atomic.Int64
}

// AllocatorStats is a point-in-time view of allocator counters.
type AllocatorStats struct {
	Issued   int64 `json:"issued"`   // ids ever minted
	Recycled int64 `json:"recycled"` // allocations served from the free-list
	Dropped  int64 `json:"dropped"`  // frees rejected by a full free-list
	FreeLen  int   `json:"free_len"` // ids currently waiting on the free-list
	FreeCap  int   `json:"free_cap"` // free-list capacity
}

// NewAllocator creates an allocator whose free-list holds at most
// freeListCapacity ids.
func NewAllocator[T constraints.Integer](freeListCapacity int) *Allocator[T] {
	return &Allocator[T]{free: NewStack[T](freeListCapacity)}
}

// Allocate returns a recycled id if one is available, otherwise the next
// never-issued value. Panics once every value of T has been minted.
func (a *Allocator[T]) Allocate() T {
	if id, ok := a.free.Pop(); ok {
		a.recycled.Add(1)
		return id
	}
	for {
		v := a.issued.Load()
		if int64(T(v)) != v {
			var zero T
			panic(fmt.Sprintf("Allocator.Allocate: id space of %T exhausted after %d ids", zero, v))
		}
		if a.issued.CompareAndSwap(v, v+1) {
			return T(v)
		}
	}
}

// Free returns id to the free-list. Returns false when the free-list is full
// and the id was dropped. Panics if id was never issued.
func (a *Allocator[T]) Free(id T) bool {
	if int64(id) < 0 || int64(id) >= a.issued.Load() {
		panic(fmt.Sprintf("Allocator.Free: id %d was never issued", int64(id)))
	}
	if a.free.Push(id) {
		return true
	}
	a.dropped.Add(1)
	return false
}

// Count returns how many ids were ever minted; it is not the live count.
func (a *Allocator[T]) Count() int64 {
	return a.issued.Load()
}

// Stats returns the current counters.
func (a *Allocator[T]) Stats() AllocatorStats {
	return AllocatorStats{
		Issued:   a.issued.Load(),
		Recycled: a.recycled.Load(),
		Dropped:  a.dropped.Load(),
		FreeLen:  a.free.Len(),
		FreeCap:  a.free.Cap(),
	}
}

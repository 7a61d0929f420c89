// Package binpool implements weighted sampling over shrinking populations of
// labeled bins.
//
// A Bin holds the remaining draw count of one outcome. Bins live in an arena
// shared by a root BinPool and every pool derived from it (sub-pools, groups,
// per-shape pools), so a pick through any pool is observed by all of them.
// Shelves chain fixed-capacity blocks of arena indices and keep a running
// total current through CountObserver callbacks.
//
// None of the types in this package are safe for concurrent mutation.
// Callers run sampling from a single goroutine per step.
package binpool

import "fmt"

// CountObserver receives count deltas from the bins it is registered on.
type CountObserver interface {
	OnCountDelta(delta int64)
}

// Bin is a single weighted outcome: a label plus the number of draws left.
type Bin[L comparable] struct {
	label     L
	count     int64
	original  int64
	observers []CountObserver
}

func newBin[L comparable](label L, count int64) *Bin[L] {
	if count < 0 {
		panic(fmt.Sprintf("Bin: count must be >= 0, got %d", count))
	}
	return &Bin[L]{label: label, count: count, original: count}
}

// Label returns the bin's immutable label.
func (b *Bin[L]) Label() L {
	return b.label
}

// Count returns the remaining weight.
func (b *Bin[L]) Count() int64 {
	return b.count
}

// OriginalCount returns the count the bin was created with.
func (b *Bin[L]) OriginalCount() int64 {
	return b.original
}

// Pick removes one unit and returns the label.
// Panics if the bin is empty.
func (b *Bin[L]) Pick() L {
	if b.count <= 0 {
		panic(fmt.Sprintf("Bin.Pick: bin %v is empty", b.label))
	}
	b.apply(-1)
	return b.label
}

// PickN removes n units. Panics if n is negative or exceeds the count.
func (b *Bin[L]) PickN(n int64) {
	if n < 0 {
		panic(fmt.Sprintf("Bin.PickN: n must be >= 0, got %d", n))
	}
	if n > b.count {
		panic(fmt.Sprintf("Bin.PickN: bin %v has %d left, requested %d", b.label, b.count, n))
	}
	b.apply(-n)
}

// Add returns n units to the bin. The original count is unchanged, so a
// later Reset drops them again.
func (b *Bin[L]) Add(n int64) {
	if n < 0 {
		panic(fmt.Sprintf("Bin.Add: n must be >= 0, got %d", n))
	}
	b.apply(n)
}

// Reset restores the original count.
func (b *Bin[L]) Reset() {
	b.apply(b.original - b.count)
}

// Observe registers o for every future count delta.
func (b *Bin[L]) Observe(o CountObserver) {
	b.observers = append(b.observers, o)
}

// Unobserve removes one registration of o. No-op if o is not registered.
func (b *Bin[L]) Unobserve(o CountObserver) {
	for i, obs := range b.observers {
		if obs == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *Bin[L]) apply(delta int64) {
	if delta == 0 {
		return
	}
	b.count += delta
	for _, o := range b.observers {
		o.OnCountDelta(delta)
	}
}

func (b *Bin[L]) String() string {
	return fmt.Sprintf("%v=%d", b.label, b.count)
}

// arena owns every bin reachable from a root pool and its derived pools.
type arena[L comparable] struct {
	bins    []*Bin[L]
	byLabel map[L][]int
}

func newArena[L comparable]() *arena[L] {
	return &arena[L]{byLabel: make(map[L][]int)}
}

func (a *arena[L]) add(label L, count int64) int {
	idx := len(a.bins)
	a.bins = append(a.bins, newBin(label, count))
	a.byLabel[label] = append(a.byLabel[label], idx)
	return idx
}

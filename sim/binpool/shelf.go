package binpool

import "fmt"

// DefaultShelfCapacity is the number of bin slots per shelf.
const DefaultShelfCapacity = 256

// Shelf is one fixed-capacity block of bin slots in a singly-linked chain.
// Each shelf tracks the live sum of the counts it directly holds; the chain
// total is the sum over all shelves.
//
// Slots hold arena indices, so several chains can reference the same bins.
type Shelf[L comparable] struct {
	arena        *arena[L]
	slots        []int
	capacity     int
	runningTotal int64
	next         *Shelf[L]
	head         *Shelf[L]

	// tail is only maintained on the head of a chain.
	tail *Shelf[L]
}

func newShelf[L comparable](a *arena[L], capacity int) *Shelf[L] {
	if capacity < 1 {
		panic(fmt.Sprintf("Shelf: capacity must be >= 1, got %d", capacity))
	}
	s := &Shelf[L]{
		arena:    a,
		slots:    make([]int, 0, capacity),
		capacity: capacity,
	}
	s.head = s
	s.tail = s
	return s
}

// OnCountDelta implements CountObserver.
func (s *Shelf[L]) OnCountDelta(delta int64) {
	s.runningTotal += delta
}

// Add places the arena bin idx in the last shelf of the chain, appending a
// new shelf when the last one is full. Must be called on the chain head.
func (s *Shelf[L]) Add(idx int) {
	last := s.tail
	if len(last.slots) == last.capacity {
		last.next = newShelf(s.arena, s.capacity)
		last.next.head = s
		last = last.next
		s.tail = last
	}
	bin := s.arena.bins[idx]
	last.slots = append(last.slots, idx)
	last.runningTotal += bin.count
	bin.Observe(last)
}

// Total returns the sum of counts over the chain starting at s.
func (s *Shelf[L]) Total() int64 {
	var total int64
	for sh := s; sh != nil; sh = sh.next {
		total += sh.runningTotal
	}
	return total
}

// Len returns the number of bins held by the chain starting at s.
func (s *Shelf[L]) Len() int {
	n := 0
	for sh := s; sh != nil; sh = sh.next {
		n += len(sh.slots)
	}
	return n
}

// RunningTotal returns the sum of counts held directly by this shelf.
func (s *Shelf[L]) RunningTotal() int64 {
	return s.runningTotal
}

// Next returns the following shelf, or nil at the end of the chain.
func (s *Shelf[L]) Next() *Shelf[L] {
	return s.next
}

// Find returns the bin whose cumulative count range contains offset.
// Whole shelves are skipped by their running totals; the shelf that holds
// offset is scanned linearly. Panics unless 0 <= offset < Total().
func (s *Shelf[L]) Find(offset int64) *Bin[L] {
	if offset < 0 {
		panic(fmt.Sprintf("Shelf.Find: offset must be >= 0, got %d", offset))
	}
	remaining := offset
	for sh := s; sh != nil; sh = sh.next {
		if remaining >= sh.runningTotal {
			remaining -= sh.runningTotal
			continue
		}
		var acc int64
		for _, idx := range sh.slots {
			bin := sh.arena.bins[idx]
			acc += bin.count
			if acc > remaining {
				return bin
			}
		}
		panic(fmt.Sprintf("Shelf.Find: running total %d out of sync with slots (sum %d)", sh.runningTotal, acc))
	}
	panic(fmt.Sprintf("Shelf.Find: offset %d beyond total %d", offset, s.Total()))
}

// Reset restores the original count of every bin in the chain.
func (s *Shelf[L]) Reset() {
	for sh := s; sh != nil; sh = sh.next {
		for _, idx := range sh.slots {
			sh.arena.bins[idx].Reset()
		}
	}
}

// Detach unregisters every shelf of the chain from the bins it holds and
// leaves s as an empty chain. Must be called on the chain head.
func (s *Shelf[L]) Detach() {
	for sh := s; sh != nil; sh = sh.next {
		for _, idx := range sh.slots {
			sh.arena.bins[idx].Unobserve(sh)
		}
		sh.slots = sh.slots[:0]
		sh.runningTotal = 0
	}
	s.next = nil
	s.tail = s
}

// holds reports whether the chain headed by s references arena bin idx.
func (s *Shelf[L]) holds(idx int) bool {
	for _, o := range s.arena.bins[idx].observers {
		if sh, ok := o.(*Shelf[L]); ok && sh.head == s {
			return true
		}
	}
	return false
}

func (s *Shelf[L]) each(fn func(*Bin[L]) bool) {
	for sh := s; sh != nil; sh = sh.next {
		for _, idx := range sh.slots {
			if !fn(sh.arena.bins[idx]) {
				return
			}
		}
	}
}

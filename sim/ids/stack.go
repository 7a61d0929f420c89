// Package ids provides identifier recycling for entities that come and go
// during a simulation: a fixed-capacity concurrent stack used as a free-list,
// and an allocator that prefers recycled ids over minting new ones.
package ids

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Stack is a fixed-capacity LIFO safe for concurrent use.
// Capacity is a hard ceiling: a full stack rejects pushes instead of growing.
type Stack[T constraints.Integer] struct {
	mu    sync.Mutex
	slots []T
	head  atomic.Int64 // mirrors len of the live prefix of slots
}

// NewStack creates a stack holding at most capacity values.
func NewStack[T constraints.Integer](capacity int) *Stack[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("Stack: capacity must be >= 0, got %d", capacity))
	}
	return &Stack[T]{slots: make([]T, capacity)}
}

// Push stores v on top. Returns false, dropping v, when the stack is full.
func (s *Stack[T]) Push(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.head.Load()
	if h == int64(len(s.slots)) {
		return false
	}
	s.slots[h] = v
	s.head.Store(h + 1)
	return true
}

// Pop removes and returns the top value. Returns false when empty.
func (s *Stack[T]) Pop() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.head.Load()
	if h == 0 {
		var zero T
		return zero, false
	}
	v := s.slots[h-1]
	s.head.Store(h - 1)
	return v, true
}

// Len returns the number of stored values without taking the lock.
func (s *Stack[T]) Len() int {
	return int(s.head.Load())
}

// Cap returns the fixed capacity.
func (s *Stack[T]) Cap() int {
	return len(s.slots)
}

// Package stack implements a bounded, resizable LIFO container of int32
// values shared by concurrent callers. A single mutex guards the triple
// (buffer, depth, capacity); every operation runs as one atomic critical
// section, so no partial mutation is ever observable.
package stack

import "sync"

// DefaultMaxCapacity bounds how large Resize may grow the backing buffer.
// It stands in for allocation failure: a resize beyond the limit fails with
// ErrCapacityExceeded and leaves the stack completely unchanged.
const DefaultMaxCapacity = 1 << 24

// Stack is a mutex-protected integer stack. A new stack has capacity zero,
// so pushes fail until Resize sets a positive capacity.
//
// Invariant: 0 <= depth <= capacity == len(buf); indices [0, depth) hold
// valid elements and buf[depth-1] is the top.
type Stack struct {
	mu          sync.Mutex
	buf         []int32
	depth       int
	maxCapacity int
	closed      bool
}

// New creates an empty stack with capacity zero and the default
// allocation limit.
func New() *Stack {
	return NewWithLimit(DefaultMaxCapacity)
}

// NewWithLimit creates an empty stack whose capacity may never be resized
// beyond limit. A non-positive limit falls back to DefaultMaxCapacity.
func NewWithLimit(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultMaxCapacity
	}
	return &Stack{maxCapacity: limit}
}

// Push places v on top of the stack. It fails with ErrStackFull when the
// stack is at capacity and never allocates.
func (s *Stack) Push(v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStackClosed
	}
	if s.depth == len(s.buf) {
		return ErrStackFull
	}
	s.buf[s.depth] = v
	s.depth++
	return nil
}

// Pop removes and returns the top element. An empty stack fails with
// ErrStackEmpty; the result variant is how callers distinguish "no value"
// from a popped zero. The vacated slot is not cleared.
func (s *Stack) Pop() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStackClosed
	}
	if s.depth == 0 {
		return 0, ErrStackEmpty
	}
	s.depth--
	return s.buf[s.depth], nil
}

// Resize changes the stack capacity to n. The existing elements are copied
// into a freshly allocated buffer, oldest first; when n is below the current
// depth the stack is truncated from the top down and the excess elements are
// silently discarded. That truncation is destructive and irreversible.
//
// Resize fails with ErrInvalidSize for n <= 0 and with ErrCapacityExceeded
// when n is above the allocation limit. On any failure the buffer, depth and
// capacity are left completely unchanged.
func (s *Stack) Resize(n int) error {
	if n <= 0 {
		return ErrInvalidSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStackClosed
	}
	if n <= 0 {
		return ErrInvalidSize
	}
	if n > s.maxCapacity {
		return ErrCapacityExceeded
	}

	buf := make([]int32, n)
	copied := copy(buf, s.buf[:s.depth])
	s.buf = buf
	if s.depth > copied {
		s.depth = copied
	}
	return nil
}

// Depth returns the number of elements currently on the stack.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// Capacity returns the current maximum element count.
func (s *Stack) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Snapshot returns a copy of the live elements, bottom first. The returned
// slice never aliases the internal buffer.
func (s *Stack) Snapshot() ([]int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStackClosed
	}
	out := make([]int32, s.depth)
	copy(out, s.buf[:s.depth])
	return out, nil
}

// Close releases the backing buffer and marks the stack unusable. Every
// operation after Close fails with ErrStackClosed, including a second Close.
func (s *Stack) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStackClosed
	}
	s.closed = true
	s.buf = nil
	s.depth = 0
	return nil
}

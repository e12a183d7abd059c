package stack

import (
	"errors"
	"sync"
	"testing"
)

// TestPushPopLIFO tests that values come back in reverse push order
func TestPushPopLIFO(t *testing.T) {
	s := New()
	if err := s.Resize(5); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	values := []int32{7, -3, 0, 42}
	for _, v := range values {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push(%d) failed: %v", v, err)
		}
	}

	for i := len(values) - 1; i >= 0; i-- {
		v, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if v != values[i] {
			t.Errorf("Expected %d, got %d", values[i], v)
		}
	}

	if s.Depth() != 0 {
		t.Errorf("Expected depth 0, got %d", s.Depth())
	}
}

// TestNewStackHasZeroCapacity tests that pushes fail before the first resize
func TestNewStackHasZeroCapacity(t *testing.T) {
	s := New()

	if s.Capacity() != 0 {
		t.Errorf("Expected capacity 0, got %d", s.Capacity())
	}
	if err := s.Push(1); !errors.Is(err, ErrStackFull) {
		t.Errorf("Expected ErrStackFull, got %v", err)
	}
}

// TestPopEmptyIsIdempotent tests that popping an empty stack is repeatable
// and has no side effects
func TestPopEmptyIsIdempotent(t *testing.T) {
	s := New()
	if err := s.Resize(3); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		v, err := s.Pop()
		if !errors.Is(err, ErrStackEmpty) {
			t.Fatalf("Pop #%d: expected ErrStackEmpty, got %v", i, err)
		}
		if v != 0 {
			t.Errorf("Pop #%d: expected zero value, got %d", i, v)
		}
	}

	if s.Depth() != 0 || s.Capacity() != 3 {
		t.Errorf("Expected depth 0 capacity 3, got %d/%d", s.Depth(), s.Capacity())
	}
}

// TestPushFullBoundary tests that the push after capacity is rejected
// without mutating depth
func TestPushFullBoundary(t *testing.T) {
	s := New()
	if err := s.Resize(4); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	for i := int32(0); i < 4; i++ {
		if err := s.Push(i); err != nil {
			t.Fatalf("Push(%d) failed: %v", i, err)
		}
	}

	if err := s.Push(99); !errors.Is(err, ErrStackFull) {
		t.Errorf("Expected ErrStackFull, got %v", err)
	}
	if s.Depth() != 4 {
		t.Errorf("Expected depth 4 after rejected push, got %d", s.Depth())
	}
}

// TestResizeGrowPreservesContent tests that growing keeps all elements
// in order
func TestResizeGrowPreservesContent(t *testing.T) {
	s := New()
	if err := s.Resize(5); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	for _, v := range []int32{1, 2, 3} {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	if err := s.Resize(10); err != nil {
		t.Fatalf("Resize to 10 failed: %v", err)
	}
	if s.Capacity() != 10 || s.Depth() != 3 {
		t.Fatalf("Expected capacity 10 depth 3, got %d/%d", s.Capacity(), s.Depth())
	}

	for _, want := range []int32{3, 2, 1} {
		v, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if v != want {
			t.Errorf("Expected %d, got %d", want, v)
		}
	}
}

// TestResizeShrinkTruncatesTop tests that shrinking below depth discards the
// newest-pushed elements and keeps the oldest
func TestResizeShrinkTruncatesTop(t *testing.T) {
	s := New()
	if err := s.Resize(5); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	for _, v := range []int32{1, 2, 3, 4, 5} {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	if err := s.Resize(2); err != nil {
		t.Fatalf("Resize to 2 failed: %v", err)
	}
	if s.Depth() != 2 {
		t.Fatalf("Expected depth 2 after shrink, got %d", s.Depth())
	}

	for _, want := range []int32{2, 1} {
		v, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if v != want {
			t.Errorf("Expected %d, got %d", want, v)
		}
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackEmpty) {
		t.Errorf("Expected ErrStackEmpty after draining, got %v", err)
	}
}

// TestResizeInvalidSizeLeavesStateUnchanged tests rejection of zero and
// negative targets
func TestResizeInvalidSizeLeavesStateUnchanged(t *testing.T) {
	s := New()
	if err := s.Resize(3); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	s.Push(10)
	s.Push(20)

	for _, n := range []int{0, -1, -100} {
		if err := s.Resize(n); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Resize(%d): expected ErrInvalidSize, got %v", n, err)
		}
	}

	if s.Depth() != 2 || s.Capacity() != 3 {
		t.Errorf("Expected depth 2 capacity 3, got %d/%d", s.Depth(), s.Capacity())
	}
	if v, _ := s.Pop(); v != 20 {
		t.Errorf("Expected top 20, got %d", v)
	}
}

// TestResizeOverLimitLeavesStateUnchanged tests the allocation-limit guard
func TestResizeOverLimitLeavesStateUnchanged(t *testing.T) {
	s := NewWithLimit(8)
	if err := s.Resize(4); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	s.Push(1)

	if err := s.Resize(9); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Expected ErrCapacityExceeded, got %v", err)
	}
	if s.Depth() != 1 || s.Capacity() != 4 {
		t.Errorf("Expected depth 1 capacity 4, got %d/%d", s.Depth(), s.Capacity())
	}
}

// TestSnapshotCopiesBottomFirst tests that Snapshot returns the live
// elements without aliasing the buffer
func TestSnapshotCopiesBottomFirst(t *testing.T) {
	s := New()
	s.Resize(5)
	for _, v := range []int32{1, 2, 3} {
		s.Push(v)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 3 || snap[0] != 1 || snap[1] != 2 || snap[2] != 3 {
		t.Errorf("Unexpected snapshot: %v", snap)
	}

	snap[0] = 99
	if v, _ := s.Snapshot(); v[0] != 1 {
		t.Error("Snapshot aliases the internal buffer")
	}
}

// TestCloseIsTerminal tests that every operation fails after Close,
// including a second Close
func TestCloseIsTerminal(t *testing.T) {
	s := New()
	s.Resize(2)
	s.Push(1)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.Push(1); !errors.Is(err, ErrStackClosed) {
		t.Errorf("Push after close: expected ErrStackClosed, got %v", err)
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackClosed) {
		t.Errorf("Pop after close: expected ErrStackClosed, got %v", err)
	}
	if err := s.Resize(4); !errors.Is(err, ErrStackClosed) {
		t.Errorf("Resize after close: expected ErrStackClosed, got %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrStackClosed) {
		t.Errorf("Second close: expected ErrStackClosed, got %v", err)
	}
}

// TestConcurrentPushPop tests depth accounting under concurrent mixed
// push/pop load: depth stays within [0, capacity] and successful pushes
// minus successful pops equals the final depth
func TestConcurrentPushPop(t *testing.T) {
	const (
		goroutines = 8
		opsPerGoro = 1000
		capacity   = 16
	)

	s := New()
	if err := s.Resize(capacity); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	var wg sync.WaitGroup
	pushes := make([]int, goroutines)
	pops := make([]int, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < opsPerGoro; i++ {
				if i%2 == 0 {
					if err := s.Push(int32(i)); err == nil {
						pushes[g]++
					} else if !errors.Is(err, ErrStackFull) {
						t.Errorf("Unexpected push error: %v", err)
						return
					}
				} else {
					if _, err := s.Pop(); err == nil {
						pops[g]++
					} else if !errors.Is(err, ErrStackEmpty) {
						t.Errorf("Unexpected pop error: %v", err)
						return
					}
				}
				if d := s.Depth(); d < 0 || d > capacity {
					t.Errorf("Depth %d outside [0, %d]", d, capacity)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	totalPushes, totalPops := 0, 0
	for g := 0; g < goroutines; g++ {
		totalPushes += pushes[g]
		totalPops += pops[g]
	}
	if got := s.Depth(); totalPushes-totalPops != got {
		t.Errorf("Accounting mismatch: %d pushes - %d pops != depth %d",
			totalPushes, totalPops, got)
	}
}

// TestConcurrentResize tests that resizing while pushers and poppers run
// never corrupts the depth invariant
func TestConcurrentResize(t *testing.T) {
	s := New()
	if err := s.Resize(8); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				s.Push(int32(i))
				s.Pop()
			}
		}()
	}

	sizes := []int{2, 16, 4, 32, 1, 8}
	for i := 0; i < 200; i++ {
		n := sizes[i%len(sizes)]
		if err := s.Resize(n); err != nil {
			t.Fatalf("Resize(%d) failed: %v", n, err)
		}
		if d, c := s.Depth(), s.Capacity(); d < 0 || d > c {
			t.Fatalf("Invariant broken: depth %d capacity %d", d, c)
		}
	}
	close(stop)
	wg.Wait()
}

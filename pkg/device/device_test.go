package device

import (
	"errors"
	"testing"

	"github.com/dshibkova/intstack/pkg/stack"
)

func openTestDevice(t *testing.T, capacity int) *StackDevice {
	t.Helper()
	s := stack.New()
	if capacity > 0 {
		if err := s.Resize(capacity); err != nil {
			t.Fatalf("Resize failed: %v", err)
		}
	}
	return Open(s)
}

// TestWriteRead tests the push/pop round trip through the byte interface
func TestWriteRead(t *testing.T) {
	dev := openTestDevice(t, 4)

	n, err := dev.Write(EncodeInt32(-12345))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != IntSize {
		t.Errorf("Expected %d bytes accepted, got %d", IntSize, n)
	}

	buf := make([]byte, IntSize)
	n, err = dev.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != IntSize {
		t.Errorf("Expected %d bytes transferred, got %d", IntSize, n)
	}
	v, err := DecodeInt32(buf)
	if err != nil {
		t.Fatalf("DecodeInt32 failed: %v", err)
	}
	if v != -12345 {
		t.Errorf("Expected -12345, got %d", v)
	}
}

// TestWrongPayloadSize tests that reads and writes require exactly one
// integer width
func TestWrongPayloadSize(t *testing.T) {
	dev := openTestDevice(t, 4)

	for _, size := range []int{0, 1, 3, 5, 8} {
		p := make([]byte, size)
		if _, err := dev.Write(p); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Write %d bytes: expected ErrInvalidArgument, got %v", size, err)
		}
		if _, err := dev.Read(p); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Read into %d bytes: expected ErrInvalidArgument, got %v", size, err)
		}
	}
}

// TestReadEmptyIsZeroTransfer tests that an empty pop reports zero bytes
// and no error
func TestReadEmptyIsZeroTransfer(t *testing.T) {
	dev := openTestDevice(t, 4)

	buf := make([]byte, IntSize)
	for i := 0; i < 3; i++ {
		n, err := dev.Read(buf)
		if err != nil {
			t.Fatalf("Read #%d failed: %v", i, err)
		}
		if n != 0 {
			t.Errorf("Read #%d: expected 0 bytes, got %d", i, n)
		}
	}
}

// TestWriteFullIsRangeError tests the distinguished range error on a full
// stack
func TestWriteFullIsRangeError(t *testing.T) {
	dev := openTestDevice(t, 2)

	for i := int32(0); i < 2; i++ {
		if _, err := dev.Write(EncodeInt32(i)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	_, err := dev.Write(EncodeInt32(3))
	if !errors.Is(err, ErrRange) {
		t.Fatalf("Expected ErrRange, got %v", err)
	}
	var devErr *Error
	if !errors.As(err, &devErr) || devErr.Code != 34 {
		t.Errorf("Expected code 34, got %v", err)
	}
}

// TestControlSetSize tests the resize control command
func TestControlSetSize(t *testing.T) {
	dev := openTestDevice(t, 0)

	if err := dev.Control(CmdSetSize, EncodeInt32(3)); err != nil {
		t.Fatalf("Control failed: %v", err)
	}
	if _, capacity := dev.Stats(); capacity != 3 {
		t.Errorf("Expected capacity 3, got %d", capacity)
	}

	// Non-positive targets are rejected before the engine is touched
	for _, n := range []int32{0, -1} {
		if err := dev.Control(CmdSetSize, EncodeInt32(n)); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Control(%d): expected ErrInvalidArgument, got %v", n, err)
		}
	}

	if err := dev.Control(CmdSetSize, []byte{1, 2}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Short argument: expected ErrInvalidArgument, got %v", err)
	}
}

// TestControlUnknownCommand tests the "no such command" failure
func TestControlUnknownCommand(t *testing.T) {
	dev := openTestDevice(t, 2)

	if err := dev.Control(0xdead, EncodeInt32(1)); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Expected ErrNotSupported, got %v", err)
	}
}

// TestControlOverLimitIsOutOfMemory tests that the allocation limit maps to
// the out-of-memory code and leaves state unchanged
func TestControlOverLimitIsOutOfMemory(t *testing.T) {
	s := stack.NewWithLimit(4)
	if err := s.Resize(2); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	dev := Open(s)
	dev.Write(EncodeInt32(7))

	err := dev.Control(CmdSetSize, EncodeInt32(100))
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Expected ErrOutOfMemory, got %v", err)
	}
	if depth, capacity := dev.Stats(); depth != 1 || capacity != 2 {
		t.Errorf("Expected depth 1 capacity 2 after failed resize, got %d/%d", depth, capacity)
	}
}

// TestClosedDeviceFailsWithNoDevice tests operations after Close
func TestClosedDeviceFailsWithNoDevice(t *testing.T) {
	dev := openTestDevice(t, 2)
	if err := dev.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	buf := make([]byte, IntSize)
	if _, err := dev.Write(EncodeInt32(1)); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Write after close: expected ErrNoDevice, got %v", err)
	}
	if _, err := dev.Read(buf); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Read after close: expected ErrNoDevice, got %v", err)
	}
	if err := dev.Control(CmdSetSize, EncodeInt32(4)); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Control after close: expected ErrNoDevice, got %v", err)
	}
}

// TestFromCode tests rehydrating boundary errors from numeric codes
func TestFromCode(t *testing.T) {
	if got := FromCode(34); got != ErrRange {
		t.Errorf("FromCode(34): expected ErrRange, got %v", got)
	}
	if got := FromCode(0); got != nil {
		t.Errorf("FromCode(0): expected nil, got %v", got)
	}
}

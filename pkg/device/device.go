// Package device adapts the stack engine to a byte-oriented resource
// interface: read pops, write pushes, and a control command resizes. Every
// call maps 1:1 onto one engine operation; the adapter performs no buffering
// or queuing and never caches depth or capacity across calls.
package device

import (
	"encoding/binary"
	"errors"

	"github.com/dshibkova/intstack/pkg/stack"
)

// IntSize is the width of one stack element on the wire.
const IntSize = 4

// CmdSetSize is the control command that resizes the stack. The argument is
// one little-endian int32 holding the desired capacity.
const CmdSetSize uint32 = 's'<<8 | 1

// Device is the four-operation resource surface over the stack engine.
// Payload faults are detected before the engine is touched, so they can
// never corrupt engine state.
type Device interface {
	// Read pops the top element into p. It requires len(p) == IntSize and
	// reports (0, nil) on an empty stack: empty is zero transfer, not an
	// error.
	Read(p []byte) (int, error)

	// Write pushes the element encoded in p. It requires
	// len(p) == IntSize and reports ErrRange when the stack is full.
	Write(p []byte) (int, error)

	// Control executes an out-of-band command. Only CmdSetSize is
	// recognized; anything else fails with ErrNotSupported.
	Control(cmd uint32, arg []byte) error

	// Close destroys the underlying stack. Further operations fail with
	// ErrNoDevice.
	Close() error
}

// StackDevice binds a stack engine instance to the Device surface.
type StackDevice struct {
	stack *stack.Stack
}

var _ Device = (*StackDevice)(nil)

// Open wraps s in a StackDevice. The stack is owned by the device from here
// on: Close releases it.
func Open(s *stack.Stack) *StackDevice {
	return &StackDevice{stack: s}
}

func (d *StackDevice) Read(p []byte) (int, error) {
	if len(p) != IntSize {
		return 0, ErrInvalidArgument
	}

	v, err := d.stack.Pop()
	if err != nil {
		if errors.Is(err, stack.ErrStackEmpty) {
			return 0, nil
		}
		return 0, translate(err)
	}

	binary.LittleEndian.PutUint32(p, uint32(v))
	return IntSize, nil
}

func (d *StackDevice) Write(p []byte) (int, error) {
	if len(p) != IntSize {
		return 0, ErrInvalidArgument
	}

	v := int32(binary.LittleEndian.Uint32(p))
	if err := d.stack.Push(v); err != nil {
		return 0, translate(err)
	}
	return IntSize, nil
}

func (d *StackDevice) Control(cmd uint32, arg []byte) error {
	if cmd != CmdSetSize {
		return ErrNotSupported
	}
	if len(arg) != IntSize {
		return ErrInvalidArgument
	}

	n := int32(binary.LittleEndian.Uint32(arg))
	if n <= 0 {
		return ErrInvalidArgument
	}
	if err := d.stack.Resize(int(n)); err != nil {
		return translate(err)
	}
	return nil
}

func (d *StackDevice) Close() error {
	if err := d.stack.Close(); err != nil {
		return translate(err)
	}
	return nil
}

// Stats reports the current depth and capacity, re-read under the engine
// lock on every call.
func (d *StackDevice) Stats() (depth, capacity int) {
	return d.stack.Depth(), d.stack.Capacity()
}

// Snapshot returns a copy of the live elements, bottom first.
func (d *StackDevice) Snapshot() ([]int32, error) {
	values, err := d.stack.Snapshot()
	if err != nil {
		return nil, translate(err)
	}
	return values, nil
}

// translate maps engine result kinds onto the boundary error codes.
func translate(err error) error {
	switch {
	case errors.Is(err, stack.ErrStackFull):
		return ErrRange
	case errors.Is(err, stack.ErrInvalidSize):
		return ErrInvalidArgument
	case errors.Is(err, stack.ErrCapacityExceeded):
		return ErrOutOfMemory
	case errors.Is(err, stack.ErrStackClosed):
		return ErrNoDevice
	default:
		return err
	}
}

// EncodeInt32 encodes v as one wire element.
func EncodeInt32(v int32) []byte {
	p := make([]byte, IntSize)
	binary.LittleEndian.PutUint32(p, uint32(v))
	return p
}

// DecodeInt32 decodes one wire element. It fails with ErrInvalidArgument
// when p is not exactly IntSize bytes.
func DecodeInt32(p []byte) (int32, error) {
	if len(p) != IntSize {
		return 0, ErrInvalidArgument
	}
	return int32(binary.LittleEndian.Uint32(p)), nil
}

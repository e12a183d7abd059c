package stack

import "errors"

var (
	// ErrStackFull is returned by Push when depth has reached capacity
	ErrStackFull = errors.New("stack is full")

	// ErrStackEmpty is returned by Pop when the stack holds no elements
	ErrStackEmpty = errors.New("stack is empty")

	// ErrInvalidSize is returned by Resize for a non-positive target capacity
	ErrInvalidSize = errors.New("stack size must be positive")

	// ErrCapacityExceeded is returned by Resize when the target capacity is
	// above the configured allocation limit
	ErrCapacityExceeded = errors.New("stack capacity limit exceeded")

	// ErrStackClosed is returned when operating on a closed stack
	ErrStackClosed = errors.New("stack is closed")
)

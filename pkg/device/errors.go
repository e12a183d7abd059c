package device

// Error is a boundary failure carrying the numeric code the resource
// interface contract fixes. Clients propagate the code as a process exit
// status, so the values follow the conventional errno assignments.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrInvalidArgument is returned for a malformed request: a payload
	// that is not exactly one integer wide, or a non-positive resize target
	ErrInvalidArgument = &Error{Code: 22, Message: "invalid argument"}

	// ErrRange is returned when a push is rejected because the stack
	// is at capacity
	ErrRange = &Error{Code: 34, Message: "stack is full"}

	// ErrOutOfMemory is returned when a resize target exceeds the
	// allocation limit; the stack is left completely unchanged
	ErrOutOfMemory = &Error{Code: 12, Message: "cannot allocate memory"}

	// ErrNotSupported is returned for an unrecognized control command
	ErrNotSupported = &Error{Code: 25, Message: "inappropriate control command"}

	// ErrNoDevice is returned when the device has been closed or the
	// backing resource is not present
	ErrNoDevice = &Error{Code: 19, Message: "no such device"}
)

// byCode indexes the boundary errors so transports can rehydrate them from
// the numeric code carried in a response envelope.
var byCode = map[int]*Error{
	ErrInvalidArgument.Code: ErrInvalidArgument,
	ErrRange.Code:           ErrRange,
	ErrOutOfMemory.Code:     ErrOutOfMemory,
	ErrNotSupported.Code:    ErrNotSupported,
	ErrNoDevice.Code:        ErrNoDevice,
}

// FromCode returns the boundary error for code, or nil when the code is not
// one of the device error codes.
func FromCode(code int) *Error {
	return byCode[code]
}

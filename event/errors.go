package event

import "errors"

// Registry errors.
var (
	// ErrUnknownEvent is returned when a strict registry is asked to
	// register against or call an event name that was never declared.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidName is returned when an event name is empty.
	ErrInvalidName = errors.New("event name cannot be empty")

	// ErrNilListener is returned when a nil listener is registered.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrBadPattern is returned when a listener pattern fails to compile.
	ErrBadPattern = errors.New("invalid event pattern")
)

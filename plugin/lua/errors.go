package lua

import "errors"

// Runtime errors.
var (
	// ErrStateClosed is returned when using a State after Close.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when calling a table field that is not
	// a function.
	ErrNotFunction = errors.New("not a function")
)

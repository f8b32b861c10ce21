package binding

import "errors"

var (
	// ErrUnknownFunction is returned when a name matches no function or alias.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrIndexOutOfRange is returned by ordinal lookups past the end of the table.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrMalformedConfig marks a persisted or configured entry that was ignored.
	ErrMalformedConfig = errors.New("malformed config")
	// ErrInvalidBinding is returned when a rebind value cannot be bound.
	ErrInvalidBinding = errors.New("invalid binding")
)

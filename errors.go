package stage

import "errors"

var (
	// ErrUnsupported is returned by New when no GPU context can be obtained.
	ErrUnsupported = errors.New("stage: GPU context unavailable")

	// ErrInvalidOptions is returned by New for unusable options.
	ErrInvalidOptions = errors.New("stage: invalid options")
)

package captions

import "errors"

var (
	// ErrEmptyInput is returned when a passage has no text or yields no phrases.
	ErrEmptyInput = errors.New("captions: empty input")

	// ErrInvalidDuration is returned for a missing or non-positive total duration.
	ErrInvalidDuration = errors.New("captions: invalid duration")

	// ErrDegenerateWindow marks phase windows that would be negative or inverted.
	// The proportional fallback in the curve builders keeps it from reaching callers.
	ErrDegenerateWindow = errors.New("captions: degenerate animation window")
)

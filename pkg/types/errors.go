package types

import "errors"

var (
	// ErrInvalidMaxTokens is returned when an engine is constructed with a
	// non-positive token budget.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrInvalidOverlapTokens is returned when an engine is constructed
	// with a negative overlap budget.
	ErrInvalidOverlapTokens = errors.New("overlap tokens must be non-negative")
)

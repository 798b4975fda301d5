package ai

import "errors"

var (
	// ErrUnavailable is returned when an embedding backend cannot be loaded
	// in this build or on this machine.
	ErrUnavailable = errors.New("embedding backend unavailable")

	// ErrEmptyInput is returned when there is no text to embed.
	ErrEmptyInput = errors.New("no text to embed")

	// ErrDimensionMismatch is returned when a vector has an unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

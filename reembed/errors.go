package reembed

import "errors"

var (
	// ErrDestinationNotEmpty is returned when the destination already holds chunks.
	ErrDestinationNotEmpty = errors.New("destination repository is not empty")

	// ErrSameRepository is returned when source and destination are the same store.
	ErrSameRepository = errors.New("source and destination must differ")

	// ErrIDMismatch is returned when a copied chunk receives a different ID
	// than its source.
	ErrIDMismatch = errors.New("copied chunk id differs from source")
)

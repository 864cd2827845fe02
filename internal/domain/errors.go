package domain

import "errors"

// Domain errors represent caller misuse of a pipeline.
// Backend write failures are never wrapped in these; they are passed to the
// observer unchanged. Check with errors.Is.
var (
	// ErrPostingLocked is returned when Post is called after posting completed
	// or after a backend failure, and before Reset.
	ErrPostingLocked = errors.New("entryship: posting was completed and is now locked")

	// ErrDraining is returned when Post or PostingComplete is called while a
	// batch write of the same pipeline is still in flight.
	ErrDraining = errors.New("entryship: pipeline is draining a batch")

	// ErrEmptyPost is returned when Post is called without entries.
	ErrEmptyPost = errors.New("entryship: nothing to post")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("entryship: batch size must be positive")

	// ErrInvalidTransition is returned for a state change the pipeline
	// lifecycle does not allow.
	ErrInvalidTransition = errors.New("entryship: invalid state transition")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("entryship: invalid configuration")
)

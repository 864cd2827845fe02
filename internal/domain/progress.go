package domain

import "fmt"

// Progress is a snapshot of how far an import has come.
type Progress struct {
	// Percent is floor(Persisted / Read * 100), always within 0..100.
	Percent int

	// Read is the number of entries accepted so far.
	Read int

	// Persisted is the number of entries committed so far.
	Persisted int

	// Message is the human-readable form reported to observers.
	Message string
}

// PercentOf returns floor(persisted / read * 100) clamped to 0..100.
// Returns 0 when nothing has been persisted or nothing has been read.
func PercentOf(persisted, read int) int {
	if persisted <= 0 || read <= 0 {
		return 0
	}
	if persisted >= read {
		return 100
	}
	return persisted * 100 / read
}

// ReadProgress describes the state right after intake.
func ReadProgress(read, persisted int) Progress {
	return Progress{
		Percent:   PercentOf(persisted, read),
		Read:      read,
		Persisted: persisted,
		Message:   fmt.Sprintf("%d items read", read),
	}
}

// PersistedProgress describes the state right after a batch commit.
func PersistedProgress(read, persisted int) Progress {
	return Progress{
		Percent:   PercentOf(persisted, read),
		Read:      read,
		Persisted: persisted,
		Message:   fmt.Sprintf("%d items read / %d persisted", read, persisted),
	}
}

// FinalProgress describes the state after the remainder has been flushed.
func FinalProgress(read, persisted int) Progress {
	return Progress{
		Percent:   100,
		Read:      read,
		Persisted: persisted,
		Message:   fmt.Sprintf("%d of %d items persisted (100%%)", persisted, persisted),
	}
}

// CompletedMessage is reported when posting finishes normally.
func CompletedMessage(persisted int) string {
	return fmt.Sprintf("%d items have been persisted in the database", persisted)
}

// AbortedMessage is reported when a backend failure ends posting.
func AbortedMessage(err error) string {
	return fmt.Sprintf("data persisting aborted due to error: %v", err)
}

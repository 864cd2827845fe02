package ports

import (
	"context"

	"github.com/bft-labs/entryship/internal/domain"
)

// EntryReader produces entries from an import source.
type EntryReader interface {
	// Next returns the next entry.
	// Returns io.EOF when no more entries are currently available. A
	// followed source may produce more entries after io.EOF.
	Next(ctx context.Context) (domain.Entry, error)

	// Close releases all resources held by the reader.
	Close() error
}

// ChangeNotifier signals that a followed source may have new data.
type ChangeNotifier interface {
	// Changes delivers a value whenever the source changed.
	// Bursts of changes may be coalesced into one value.
	Changes() <-chan struct{}

	// Close stops watching.
	Close() error
}

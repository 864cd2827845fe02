package ports

import (
	"context"
	"net/http"

	"github.com/bft-labs/entryship/internal/domain"
)

// EntryWriter commits batches of entries to a backend store.
// It is the only gateway the pipeline writes through.
type EntryWriter interface {
	// WriteEntries commits every entry of the batch to batch.Destination,
	// in order. Returns nil on success.
	// Any returned error is treated as opaque by the caller and is not
	// retried; implementations should not retry internally either.
	WriteEntries(ctx context.Context, batch domain.Batch) error
}

// HTTPClient is the transport of the HTTP entry writer. *http.Client
// satisfies it; tests substitute a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Package entryship imports records into a storage backend in fixed-size
// batches, reporting progress as it goes.
//
// Example usage:
//
//	cfg := entryship.DefaultConfig()
//	cfg.Backend = "fs"
//	cfg.OutputDir = "/var/lib/imports"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	results, err := entryship.Import(ctx, cfg, []string{"scene.jsonl"}, nil)
//
// Programs that produce entries themselves can drive a Persister directly:
//
//	p, err := entryship.NewPersister(writer, "scene", 500, monitor)
//	p.Post(ctx, entries...)
//	p.PostingComplete(ctx, true)
package entryship

import (
	"github.com/rs/zerolog"

	"github.com/bft-labs/entryship/internal/app"
	"github.com/bft-labs/entryship/internal/cliconfig"
	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// Config holds the configuration of an import run.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Entry is one record: field names to values.
type Entry = domain.Entry

// Batch is a group of entries committed to a destination in one write.
type Batch = domain.Batch

// EntryWriter commits one batch to a backend.
type EntryWriter = ports.EntryWriter

// Monitor receives progress, error and completion notifications.
type Monitor = ports.Monitor

// Persister batches posted entries and commits them through an EntryWriter.
type Persister = app.Persister

// PersisterOption configures a Persister.
type PersisterOption = app.PersisterOption

// Recorder is a Monitor that remembers the latest notifications.
type Recorder = app.Recorder

// State is the lifecycle state of a Persister.
type State = app.State

// Lifecycle states.
const (
	StateAccepting = app.StateAccepting
	StateDraining  = app.StateDraining
	StateLocked    = app.StateLocked
)

// FailurePolicy decides what happens to a batch whose write failed.
type FailurePolicy = app.FailurePolicy

// Failure policies.
const (
	FailureDrop    = app.FailureDrop
	FailureRequeue = app.FailureRequeue
)

// Errors returned by a Persister.
var (
	ErrPostingLocked    = domain.ErrPostingLocked
	ErrDraining         = domain.ErrDraining
	ErrEmptyPost        = domain.ErrEmptyPost
	ErrInvalidBatchSize = domain.ErrInvalidBatchSize
	ErrInvalidConfig    = domain.ErrInvalidConfig
)

// NewPersister creates a Persister bound to one destination.
func NewPersister(writer EntryWriter, destination string, batchSize int, monitor Monitor, opts ...PersisterOption) (*Persister, error) {
	return app.NewPersister(writer, destination, batchSize, monitor, opts...)
}

// WithLogger sets the logger of a Persister.
func WithLogger(logger ports.Logger) PersisterOption {
	return app.WithLogger(logger)
}

// WithFailurePolicy sets what a Persister does with a batch whose write failed.
func WithFailurePolicy(policy FailurePolicy) PersisterOption {
	return app.WithFailurePolicy(policy)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the CLI.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

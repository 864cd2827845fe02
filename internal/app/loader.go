package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// LoaderConfig contains configuration for an import run.
type LoaderConfig struct {
	// ChunkSize is how many entries are handed to Post at once.
	// Zero means the persister's batch size.
	ChunkSize int

	// Flush writes the remainder when the source is exhausted or the run
	// is canceled. Without it the remainder is discarded.
	Flush bool

	// Follow keeps reading after io.EOF until the context is canceled.
	Follow bool

	// IdleInitial and IdleMax bound the wait between reads in follow mode
	// when no change notification arrives.
	IdleInitial time.Duration
	IdleMax     time.Duration
}

// AbortError is returned by Loader.Run when a backend failure locked the
// pipeline.
type AbortError struct {
	Destination string
	Err         error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("import into %q aborted: %v", e.Destination, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Loader drives entries from a reader into a Persister.
type Loader struct {
	config    LoaderConfig
	reader    ports.EntryReader
	persister *Persister
	notifier  ports.ChangeNotifier
	logger    ports.Logger
}

// NewLoader creates a loader. notifier may be nil; follow mode then relies
// on idle polling alone.
func NewLoader(
	config LoaderConfig,
	reader ports.EntryReader,
	persister *Persister,
	notifier ports.ChangeNotifier,
	logger ports.Logger,
) *Loader {
	if config.ChunkSize <= 0 {
		config.ChunkSize = persister.BatchSize()
	}
	if config.IdleInitial <= 0 {
		config.IdleInitial = DefaultIdleInitial
	}
	if config.IdleMax < config.IdleInitial {
		config.IdleMax = DefaultIdleMax
	}
	return &Loader{
		config:    config,
		reader:    reader,
		persister: persister,
		notifier:  notifier,
		logger:    logger,
	}
}

// Run reads the source until it is exhausted (or, in follow mode, until the
// context is canceled), posting entries as it goes, and then completes
// posting. It returns an *AbortError if the backend failed.
func (l *Loader) Run(ctx context.Context) error {
	chunk := make([]domain.Entry, 0, l.config.ChunkSize)
	idle := newIdlePacer(l.config.IdleInitial, l.config.IdleMax)

	for {
		select {
		case <-ctx.Done():
			return l.stop(ctx, chunk, ctx.Err())
		default:
		}

		entry, err := l.reader.Next(ctx)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return l.stop(ctx, chunk, cerr)
			}
			if !errors.Is(err, io.EOF) {
				l.logger.Error("read error",
					ports.Err(err),
					ports.String("destination", l.persister.Destination()),
				)
				// Whatever is queued came from a source we can no longer
				// trust to be complete; do not write it.
				if cerr := l.persister.PostingComplete(ctx, false); cerr != nil {
					return cerr
				}
				return fmt.Errorf("read %s: %w", l.persister.Destination(), err)
			}

			if err := l.post(ctx, chunk); err != nil {
				return err
			}
			chunk = chunk[:0]

			if !l.config.Follow {
				return l.complete(ctx)
			}

			if err := idle.wait(ctx, l.changes()); err != nil {
				return l.stop(ctx, nil, err)
			}
			continue
		}

		idle.reset()
		chunk = append(chunk, entry)
		if len(chunk) >= l.config.ChunkSize {
			if err := l.post(ctx, chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
}

// post hands a chunk to the persister and checks whether the backend failed.
func (l *Loader) post(ctx context.Context, chunk []domain.Entry) error {
	if len(chunk) == 0 {
		return nil
	}
	if err := l.persister.Post(ctx, chunk...); err != nil {
		return fmt.Errorf("post to %s: %w", l.persister.Destination(), err)
	}
	return l.aborted()
}

// complete ends posting with the configured flush behavior.
func (l *Loader) complete(ctx context.Context) error {
	if err := l.persister.PostingComplete(ctx, l.config.Flush); err != nil {
		return fmt.Errorf("complete %s: %w", l.persister.Destination(), err)
	}
	if err := l.aborted(); err != nil {
		return err
	}

	stats := l.persister.Stats()
	l.logger.Info("import complete",
		ports.String("destination", l.persister.Destination()),
		ports.Int("read", stats.Read),
		ports.Int("persisted", stats.Persisted),
		ports.Int("batches", stats.Batches),
	)
	return nil
}

// stop finishes a canceled run. The final write must not inherit the
// cancellation, so it runs on a context detached from ctx.
func (l *Loader) stop(ctx context.Context, chunk []domain.Entry, cause error) error {
	detached := context.WithoutCancel(ctx)
	if err := l.post(detached, chunk); err != nil {
		return err
	}
	if err := l.complete(detached); err != nil {
		return err
	}
	return cause
}

// changes returns the notifier channel, or nil without a notifier.
func (l *Loader) changes() <-chan struct{} {
	if l.notifier == nil {
		return nil
	}
	return l.notifier.Changes()
}

func (l *Loader) aborted() error {
	if err := l.persister.Err(); err != nil {
		return &AbortError{Destination: l.persister.Destination(), Err: err}
	}
	return nil
}

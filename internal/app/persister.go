package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
	"github.com/bft-labs/entryship/pkg/log"
)

// FailurePolicy decides what happens to the entries of a batch whose write
// failed.
type FailurePolicy int

const (
	// FailureDrop discards the failed batch. It is not retried or requeued.
	FailureDrop FailurePolicy = iota

	// FailureRequeue puts the failed batch back at the head of the pending
	// queue so Pending() can hand it to the caller before Reset.
	FailureRequeue
)

// String returns the configuration name of the policy.
func (p FailurePolicy) String() string {
	switch p {
	case FailureDrop:
		return "drop"
	case FailureRequeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy converts a configuration name into a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "drop":
		return FailureDrop, nil
	case "requeue":
		return FailureRequeue, nil
	default:
		return FailureDrop, domain.ErrInvalidConfig
	}
}

// Stats is a point-in-time view of a pipeline's counters.
type Stats struct {
	Read      int
	Persisted int
	Pending   int
	Batches   int
}

// PersisterOption configures optional behavior of a Persister.
type PersisterOption func(*Persister)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger ports.Logger) PersisterOption {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFailurePolicy sets what happens to a batch whose write failed.
func WithFailurePolicy(policy FailurePolicy) PersisterOption {
	return func(p *Persister) {
		p.policy = policy
	}
}

// Persister commits posted entries to one backend destination in batches of
// a fixed size.
//
// Writes are issued one at a time in post order; a write is awaited before
// the next batch is taken. A backend failure locks the pipeline and is
// reported to the monitor. PostingComplete locks it normally. Only Reset
// reopens it.
//
// The writer is never called with the mutex held, so monitors and writers
// may inspect the Persister. Calls that would start a second write while one
// is in flight fail with domain.ErrDraining, including after a Reset that
// raced with that write.
type Persister struct {
	writer      ports.EntryWriter
	destination string
	batchSize   int
	monitor     ports.Monitor
	logger      ports.Logger
	policy      FailurePolicy

	mu         sync.Mutex
	state      State
	queue      *queue
	read       int
	persisted  int
	seq        int
	err        error
	generation uint64
	run        string

	// busy is set while WriteEntries runs. It outlives a Reset so the
	// backend never sees two writes of this Persister at once.
	busy bool
}

// NewPersister creates a Persister bound to one destination, batch size and
// monitor. The Persister starts in StateAccepting.
func NewPersister(
	writer ports.EntryWriter,
	destination string,
	batchSize int,
	monitor ports.Monitor,
	opts ...PersisterOption,
) (*Persister, error) {
	if batchSize <= 0 {
		return nil, domain.ErrInvalidBatchSize
	}
	if writer == nil {
		return nil, domain.ErrInvalidConfig
	}
	if monitor == nil {
		monitor = NoopMonitor{}
	}

	p := &Persister{
		writer:      writer,
		destination: destination,
		batchSize:   batchSize,
		monitor:     monitor,
		logger:      log.NewNoopLogger(),
		policy:      FailureDrop,
		state:       StateAccepting,
		queue:       newQueue(),
		run:         uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Post queues entries and commits every full batch that is now available.
//
// It returns domain.ErrPostingLocked after completion or a backend failure,
// and domain.ErrDraining while another call of this Persister is writing.
// A backend failure during this call is reported through the monitor, not
// through the returned error; check State or Err afterwards.
func (p *Persister) Post(ctx context.Context, entries ...domain.Entry) error {
	if len(entries) == 0 {
		return domain.ErrEmptyPost
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return domain.ErrDraining
	}
	if err := p.transition(StateDraining); err != nil {
		p.mu.Unlock()
		return err
	}
	p.queue.push(entries...)
	p.read += len(entries)
	progress := domain.ReadProgress(p.read, p.persisted)
	gen := p.generation
	p.mu.Unlock()

	p.monitor.OnProgress(progress.Percent, progress.Message)

	p.drain(ctx, gen)
	return nil
}

// drain writes full batches until fewer than batchSize entries are queued,
// a write fails, or the pipeline was reset underneath it.
func (p *Persister) drain(ctx context.Context, gen uint64) {
	for {
		p.mu.Lock()
		if p.generation != gen {
			p.mu.Unlock()
			return
		}
		if p.queue.len() < p.batchSize {
			_ = p.transition(StateAccepting)
			p.mu.Unlock()
			return
		}
		batch := p.nextBatch(p.batchSize)
		p.mu.Unlock()

		if !p.commit(ctx, gen, batch, false) {
			return
		}
	}
}

// PostingComplete ends posting. With flush set, the entries still queued are
// written as one final batch first. The pipeline is locked afterwards.
// Calling it on a locked pipeline does nothing.
func (p *Persister) PostingComplete(ctx context.Context, flush bool) error {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return domain.ErrDraining
	}
	switch p.state {
	case StateLocked:
		p.mu.Unlock()
		return nil
	case StateDraining:
		p.mu.Unlock()
		return domain.ErrDraining
	}

	if !flush || p.queue.len() == 0 {
		_ = p.transition(StateLocked)
		persisted := p.persisted
		discarded := p.queue.len()
		p.mu.Unlock()

		if discarded > 0 {
			p.logger.Info("posting complete, remainder not written",
				ports.String("destination", p.destination),
				ports.Int("discarded", discarded),
			)
		}
		p.monitor.OnComplete(domain.CompletedMessage(persisted))
		return nil
	}

	_ = p.transition(StateDraining)
	batch := p.nextBatch(p.queue.len())
	gen := p.generation
	p.mu.Unlock()

	p.commit(ctx, gen, batch, true)
	return nil
}

// nextBatch takes n entries off the queue and marks the Persister busy
// until the batch is committed. Caller must hold mu.
func (p *Persister) nextBatch(n int) domain.Batch {
	p.seq++
	p.busy = true
	batch := domain.NewBatch(p.destination, p.seq, p.queue.take(n))
	batch.Run = p.run
	return batch
}

// commit writes one batch and applies the outcome. It returns false when
// dispatching must stop. final marks the flush written by PostingComplete.
func (p *Persister) commit(ctx context.Context, gen uint64, batch domain.Batch, final bool) bool {
	start := time.Now()
	err := p.writer.WriteEntries(ctx, batch)
	took := time.Since(start)

	p.mu.Lock()
	p.busy = false
	if p.generation != gen {
		p.mu.Unlock()
		p.logger.Warn("pipeline reset during write, outcome ignored",
			ports.String("destination", p.destination),
			ports.Int("seq", batch.Seq),
		)
		return false
	}

	if err != nil {
		if p.policy == FailureRequeue {
			p.queue.pushFront(batch.Entries)
		}
		p.err = err
		_ = p.transition(StateLocked)
		p.mu.Unlock()

		p.logger.Error("batch write failed",
			ports.Err(err),
			ports.String("destination", p.destination),
			ports.Int("seq", batch.Seq),
			ports.Int("entries", batch.Size()),
			ports.String("policy", p.policy.String()),
		)
		p.monitor.OnError(err)
		p.monitor.OnComplete(domain.AbortedMessage(err))
		return false
	}

	p.persisted += batch.Size()
	var progress domain.Progress
	if final {
		_ = p.transition(StateLocked)
		progress = domain.FinalProgress(p.read, p.persisted)
	} else {
		progress = domain.PersistedProgress(p.read, p.persisted)
	}
	persisted := p.persisted
	p.mu.Unlock()

	p.logger.Debug("batch committed",
		ports.String("destination", p.destination),
		ports.Int("seq", batch.Seq),
		ports.Int("entries", batch.Size()),
		ports.Duration("duration", took),
	)
	p.monitor.OnProgress(progress.Percent, progress.Message)
	if final {
		p.monitor.OnComplete(domain.CompletedMessage(persisted))
	}
	return true
}

// Reset clears the queue and counters and reopens the pipeline, whatever
// its state. A write still in flight finishes, but its outcome is ignored;
// Post and PostingComplete return domain.ErrDraining until it has returned.
func (p *Persister) Reset() {
	p.mu.Lock()
	prev := p.state
	p.queue.reset()
	p.read = 0
	p.persisted = 0
	p.seq = 0
	p.err = nil
	p.generation++
	p.run = uuid.NewString()
	p.state = StateAccepting
	p.mu.Unlock()

	p.logger.Debug("pipeline reset",
		ports.String("destination", p.destination),
		ports.String("from", prev.String()),
	)
}

// transition moves to a new state. Caller must hold mu.
func (p *Persister) transition(to State) error {
	if err := validateTransition(p.state, to); err != nil {
		return err
	}
	p.state = to
	return nil
}

// State returns the current lifecycle state.
func (p *Persister) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPostingComplete returns true once the pipeline is locked.
func (p *Persister) IsPostingComplete() bool {
	return p.State() == StateLocked
}

// Err returns the backend error that locked the pipeline, or nil.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Stats returns the current counters.
func (p *Persister) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Read:      p.read,
		Persisted: p.persisted,
		Pending:   p.queue.len(),
		Batches:   p.seq,
	}
}

// Pending returns a copy of the entries not yet committed.
func (p *Persister) Pending() []domain.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.snapshot()
}

// Destination returns the backend destination this pipeline writes to.
func (p *Persister) Destination() string {
	return p.destination
}

// BatchSize returns the number of entries per batch.
func (p *Persister) BatchSize() int {
	return p.batchSize
}

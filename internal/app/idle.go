package app

import (
	"context"
	"math/rand"
	"time"
)

// Default pacing of a following loader between empty reads.
const (
	DefaultIdleInitial = 100 * time.Millisecond
	DefaultIdleMax     = 5 * time.Second
)

// idlePacer spaces out reads of a source that has nothing new. Every empty
// wait doubles the next delay up to max; a change notification or a
// successful read resets it.
type idlePacer struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newIdlePacer(initial, max time.Duration) *idlePacer {
	return &idlePacer{initial: initial, max: max, current: initial}
}

// delay returns the current delay with ±20% jitter and advances it.
func (p *idlePacer) delay() time.Duration {
	jitter := float64(p.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(p.current) + jitter)

	p.current *= 2
	if p.current > p.max {
		p.current = p.max
	}
	return d
}

func (p *idlePacer) reset() {
	p.current = p.initial
}

// wait blocks until ctx is done, changes delivers, or the delay elapses.
// It returns ctx.Err() only when ctx ended the wait. A nil changes channel
// never delivers.
func (p *idlePacer) wait(ctx context.Context, changes <-chan struct{}) error {
	timer := time.NewTimer(p.delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-changes:
		p.reset()
		return nil
	case <-timer.C:
		return nil
	}
}

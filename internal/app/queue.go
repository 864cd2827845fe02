package app

import "github.com/bft-labs/entryship/internal/domain"

// queue holds posted entries that have not been committed yet, oldest first.
type queue struct {
	entries []domain.Entry
}

func newQueue() *queue {
	return &queue{entries: make([]domain.Entry, 0)}
}

// push appends entries at the tail.
func (q *queue) push(entries ...domain.Entry) {
	q.entries = append(q.entries, entries...)
}

// pushFront puts entries back at the head, ahead of everything queued.
func (q *queue) pushFront(entries []domain.Entry) {
	merged := make([]domain.Entry, 0, len(entries)+len(q.entries))
	merged = append(merged, entries...)
	merged = append(merged, q.entries...)
	q.entries = merged
}

// take removes and returns the oldest n entries.
// n must not exceed len().
func (q *queue) take(n int) []domain.Entry {
	out := make([]domain.Entry, n)
	copy(out, q.entries[:n])

	// Shift the rest down so the backing array does not grow without bound
	// over a long import.
	rest := copy(q.entries, q.entries[n:])
	for i := rest; i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = q.entries[:rest]
	return out
}

func (q *queue) len() int {
	return len(q.entries)
}

// snapshot returns a copy of the queued entries.
func (q *queue) snapshot() []domain.Entry {
	out := make([]domain.Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// reset drops everything queued.
func (q *queue) reset() {
	q.entries = q.entries[:0:0]
}

package app

import (
	"sync"

	"github.com/bft-labs/entryship/internal/ports"
)

// NoopMonitor discards all notifications.
type NoopMonitor struct{}

// OnProgress discards the notification.
func (NoopMonitor) OnProgress(int, string) {}

// OnError discards the notification.
func (NoopMonitor) OnError(error) {}

// OnComplete discards the notification.
func (NoopMonitor) OnComplete(string) {}

// MultiMonitor forwards every notification to each monitor, in order.
type MultiMonitor []ports.Monitor

// OnProgress forwards to every monitor.
func (m MultiMonitor) OnProgress(percent int, message string) {
	for _, mon := range m {
		mon.OnProgress(percent, message)
	}
}

// OnError forwards to every monitor.
func (m MultiMonitor) OnError(err error) {
	for _, mon := range m {
		mon.OnError(err)
	}
}

// OnComplete forwards to every monitor.
func (m MultiMonitor) OnComplete(message string) {
	for _, mon := range m {
		mon.OnComplete(message)
	}
}

// Recorder remembers what a pipeline reported: the latest progress, the
// first error and the completion message. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	percent  int
	progress string
	err      error
	complete string
	done     bool
}

// OnProgress records the latest progress.
func (r *Recorder) OnProgress(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = percent
	r.progress = message
}

// OnError records the first error.
func (r *Recorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

// OnComplete records the completion message.
func (r *Recorder) OnComplete(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = message
	r.done = true
}

// Progress returns the latest percent and message.
func (r *Recorder) Progress() (int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.percent, r.progress
}

// Err returns the first reported error, or nil.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completion returns the completion message and whether one was reported.
func (r *Recorder) Completion() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.complete, r.done
}

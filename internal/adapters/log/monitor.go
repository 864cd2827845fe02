// Package log adapts pipeline notifications to structured log output.
package log

import (
	"github.com/bft-labs/entryship/internal/ports"
)

// Monitor implements ports.Monitor by writing every notification to a logger.
type Monitor struct {
	logger      ports.Logger
	destination string
}

// NewMonitor creates a monitor that tags its events with the destination.
func NewMonitor(logger ports.Logger, destination string) *Monitor {
	return &Monitor{logger: logger, destination: destination}
}

// OnProgress logs progress at info level.
func (m *Monitor) OnProgress(percent int, message string) {
	m.logger.Info(message,
		ports.String("destination", m.destination),
		ports.Int("percent", percent),
	)
}

// OnError logs a backend failure at error level.
func (m *Monitor) OnError(err error) {
	m.logger.Error("backend write failed",
		ports.String("destination", m.destination),
		ports.Err(err),
	)
}

// OnComplete logs completion at info level.
func (m *Monitor) OnComplete(message string) {
	m.logger.Info(message,
		ports.String("destination", m.destination),
		ports.Bool("complete", true),
	)
}

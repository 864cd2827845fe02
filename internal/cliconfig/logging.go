package cliconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the CLI logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLogLevel sets the global zerolog level from a name such as "debug".
// An empty name leaves the level unchanged.
func SetLogLevel(name string) error {
	if name == "" {
		return nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", name, err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

package ports

import "github.com/bft-labs/entryship/pkg/log"

// Logger provides structured logging to the application layer.
type Logger = log.Logger

// Field is a key-value pair for structured logging.
type Field = log.Field

// Field constructors re-exported for adapters and the application layer.
var (
	String   = log.String
	Strings  = log.Strings
	Int      = log.Int
	Int64    = log.Int64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)

// With binds fields to every line written through the returned Logger.
var With = log.With

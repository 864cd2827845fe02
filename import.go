package entryship

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	fsAdapter "github.com/bft-labs/entryship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/entryship/internal/adapters/http"
	kafkaAdapter "github.com/bft-labs/entryship/internal/adapters/kafka"
	logAdapter "github.com/bft-labs/entryship/internal/adapters/log"
	redisAdapter "github.com/bft-labs/entryship/internal/adapters/redis"
	s3Adapter "github.com/bft-labs/entryship/internal/adapters/s3"
	"github.com/bft-labs/entryship/internal/adapters/source"
	sqlAdapter "github.com/bft-labs/entryship/internal/adapters/sql"
	"github.com/bft-labs/entryship/internal/app"
	"github.com/bft-labs/entryship/internal/cliconfig"
	"github.com/bft-labs/entryship/internal/ports"
	"github.com/bft-labs/entryship/pkg/log"
)

// Result describes the outcome of importing one input file.
type Result struct {
	Input       string
	Destination string
	Read        int
	Persisted   int
	Batches     int
	// Completion is the last completion message, empty if the run never
	// completed.
	Completion string
	Err        error
}

// OpenWriter connects to the backend selected by cfg.Backend.
// The returned writer may implement io.Closer.
func OpenWriter(ctx context.Context, cfg Config, logger ports.Logger) (EntryWriter, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	switch cfg.Backend {
	case cliconfig.BackendSQLite:
		return sqlAdapter.Open(ctx, sqlAdapter.Config{DSN: cfg.SQLiteDSN}, logger)

	case cliconfig.BackendRedis:
		return redisAdapter.Open(ctx, redisAdapter.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, logger)

	case cliconfig.BackendKafka:
		return kafkaAdapter.Open(kafkaAdapter.Config{Brokers: cfg.KafkaBrokers}, logger)

	case cliconfig.BackendS3:
		return s3Adapter.Open(ctx, s3Adapter.Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Prefix:         cfg.S3Prefix,
			ForcePathStyle: cfg.S3PathStyle,
		}, logger)

	case cliconfig.BackendHTTP:
		hostname, _ := os.Hostname()
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		return httpAdapter.NewEntryWriter(client, httpAdapter.Config{
			ServiceURL: cfg.ServiceURL,
			AuthKey:    cfg.AuthKey,
			Hostname:   hostname,
		}, logger), nil

	case cliconfig.BackendFS:
		return fsAdapter.NewEntryFileWriter(cfg.OutputDir), nil

	default:
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, ErrInvalidConfig)
	}
}

// Import loads every input into the configured backend. Inputs are imported
// concurrently, each by its own Persister. The returned results are in input
// order. The error is the first input's failure that is not a cancellation,
// or context.Canceled when cancellation is all that stopped the run.
//
// In follow mode Import runs until ctx is canceled. Queued entries are then
// written (when cfg.Flush is set) and each result carries context.Canceled.
func Import(ctx context.Context, cfg Config, inputs []string, logger ports.Logger) ([]Result, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := app.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, fmt.Errorf("failure policy %q: %w", cfg.FailurePolicy, err)
	}
	format, err := source.ParseFormat(cfg.InputFormat)
	if err != nil {
		return nil, err
	}

	writer, err := OpenWriter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	if c, ok := writer.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("close backend", ports.Err(err), ports.String("backend", cfg.Backend))
			}
		}()
	}

	results := make([]Result, len(inputs))
	var g errgroup.Group
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = importFile(ctx, cfg, policy, format, writer, input, logger)
			return results[i].Err
		})
	}
	if err := g.Wait(); err != nil {
		return results, importError(results, err)
	}
	return results, nil
}

// importError picks the error Import reports. A backend or input failure
// wins over the cancellation of the other inputs, whichever finished first.
func importError(results []Result, first error) error {
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			return r.Err
		}
	}
	return first
}

func importFile(
	ctx context.Context,
	cfg Config,
	policy app.FailurePolicy,
	format source.Format,
	writer EntryWriter,
	input string,
	logger ports.Logger,
) Result {
	dest := cfg.Destination
	if dest == "" {
		dest = source.Destination(input)
	}
	res := Result{Input: input, Destination: dest}
	logger = ports.With(logger, ports.String("input", input))

	reader, err := source.Open(input, source.Options{
		Format:    format,
		Delimiter: cfg.CSVDelimiter,
		Tail:      cfg.Follow,
	})
	if err != nil {
		res.Err = err
		return res
	}
	defer reader.Close()

	var notifier ports.ChangeNotifier
	if cfg.Follow {
		w, err := source.NewFileWatcher(input, logger)
		if err != nil {
			logger.Warn("file watcher unavailable, polling instead", ports.Err(err))
		} else {
			notifier = w
			defer w.Close()
		}
	}

	rec := &app.Recorder{}
	monitor := app.MultiMonitor{rec, logAdapter.NewMonitor(logger, dest)}
	p, err := app.NewPersister(writer, dest, cfg.BatchSize, monitor,
		app.WithLogger(logger),
		app.WithFailurePolicy(policy),
	)
	if err != nil {
		res.Err = err
		return res
	}

	loader := app.NewLoader(app.LoaderConfig{
		ChunkSize:   cfg.ChunkSize,
		Flush:       cfg.Flush,
		Follow:      cfg.Follow,
		IdleInitial: cfg.PollInterval,
		IdleMax:     cfg.MaxPollInterval,
	}, reader, p, notifier, logger)

	start := time.Now()
	logger.Info("import started",
		ports.String("destination", dest),
		ports.String("backend", cfg.Backend),
		ports.Any("format", format),
		ports.Bool("follow", cfg.Follow),
	)
	res.Err = loader.Run(ctx)

	stats := p.Stats()
	res.Read = stats.Read
	res.Persisted = stats.Persisted
	res.Batches = stats.Batches
	res.Completion, _ = rec.Completion()
	logger.Debug("import finished", ports.Duration("duration", time.Since(start)))
	return res
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/entryship"
	"github.com/bft-labs/entryship/internal/cliconfig"
	"github.com/bft-labs/entryship/pkg/log"
)

const helpDescription = `
Import JSON-lines or CSV files into a storage backend in fixed-size batches.

Highlights:
  - One pipeline per input file; batches are written in order, one at a time.
  - Backends: sqlite, redis, kafka, s3, http and local files (fs).
  - Follow mode keeps importing lines appended to a growing file.
  - Configure via file, env (ENTRYSHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  entryship --backend sqlite --sqlite-dsn imports.db scene.jsonl
  entryship --backend redis --redis-addr localhost:6379 --batch-size 500 users.csv
  entryship --backend fs --output-dir ./out --follow events.jsonl
  entryship --config $HOME/.entryship/config.toml a.jsonl b.jsonl
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:          "entryship [flags] <input>...",
		Short:        "Import records into a storage backend in batches",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.entryship/config.toml), then apply overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			// Environment overrides the file; flags override both (changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.Debug().Interface("config", cfg.Masked()).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			adapter := log.NewZerologAdapterWithLogger(logger).WithComponent("import")
			results, err := entryship.Import(ctx, cfg, args, adapter)
			for _, r := range results {
				ev := logger.Info()
				if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
					ev = logger.Error().Err(r.Err)
				}
				ev.Str("input", r.Input).
					Str("destination", r.Destination).
					Int("read", r.Read).
					Int("persisted", r.Persisted).
					Int("batches", r.Batches).
					Msg(r.Completion)
			}

			// Cancellation is how a follow run ends.
			if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
				logger.Info().Msg("received signal, stopped")
				return nil
			}
			return err
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.entryship/config.toml)")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: "+strings.Join(cliconfig.Backends, ", "))
	flags.StringVar(&cfg.Destination, "destination", cfg.Destination, "backend destination (defaults to the input file name without extension)")

	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "entries per batch")
	flags.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "entries handed to the pipeline at once (defaults to batch size)")
	flags.BoolVar(&cfg.Flush, "flush", cfg.Flush, "write the final partial batch when input ends")
	flags.BoolVar(&cfg.Follow, "follow", cfg.Follow, "keep importing lines appended to the input until interrupted")
	flags.StringVar(&cfg.FailurePolicy, "failure-policy", cfg.FailurePolicy, "what to do with a batch whose write failed: drop or requeue")
	flags.StringVar(&cfg.InputFormat, "format", cfg.InputFormat, "input format: jsonl or csv (default: by file extension)")
	flags.StringVar(&cfg.CSVDelimiter, "csv-delimiter", cfg.CSVDelimiter, "CSV field delimiter (default ',')")
	flags.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "initial poll interval in follow mode")
	flags.DurationVar(&cfg.MaxPollInterval, "max-poll", cfg.MaxPollInterval, "maximum poll interval in follow mode")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	flags.StringVar(&cfg.SQLiteDSN, "sqlite-dsn", cfg.SQLiteDSN, "SQLite database file")

	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	flags.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	flags.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	flags.StringVar(&cfg.RedisKeyPrefix, "redis-key-prefix", cfg.RedisKeyPrefix, "prefix of the Redis list keys")

	flags.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "Kafka broker addresses")

	flags.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	flags.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	flags.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint URL")
	flags.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "object key prefix")
	flags.StringVar(&cfg.S3AccessKey, "s3-access-key", cfg.S3AccessKey, "S3 access key")
	flags.StringVar(&cfg.S3SecretKey, "s3-secret-key", cfg.S3SecretKey, "S3 secret key")
	flags.BoolVar(&cfg.S3PathStyle, "s3-path-style", cfg.S3PathStyle, "use path-style S3 URLs")

	flags.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "ingestion service URL for the http backend")
	flags.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for the http backend")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "output directory for the fs backend")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("entryship")
		os.Exit(1)
	}
}

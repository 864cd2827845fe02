// Package redis commits entry batches to Redis lists.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// DefaultKeyPrefix is prepended to the destination to form the list key.
const DefaultKeyPrefix = "entryship:"

// Config holds Redis connection configuration.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// EntryWriter implements ports.EntryWriter by pushing JSON-encoded entries
// onto the list <prefix><destination>. A batch is sent as one MULTI/EXEC
// transaction so it lands contiguously.
type EntryWriter struct {
	client goredis.UniversalClient
	prefix string
	logger ports.Logger
}

// NewEntryWriter wraps an existing client.
func NewEntryWriter(client goredis.UniversalClient, prefix string, logger ports.Logger) *EntryWriter {
	return &EntryWriter{client: client, prefix: prefix, logger: logger}
}

// Open creates a client from cfg and checks connectivity.
func Open(ctx context.Context, cfg Config, logger ports.Logger) (*EntryWriter, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required: %w", domain.ErrInvalidConfig)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("redis ready", ports.String("addr", cfg.Addr), ports.Int("db", cfg.DB))
	return NewEntryWriter(client, cfg.KeyPrefix, logger), nil
}

// Key returns the list key of a destination.
func (w *EntryWriter) Key(destination string) string {
	return w.prefix + destination
}

// WriteEntries pushes the batch in one transaction.
func (w *EntryWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	values := make([]interface{}, len(batch.Entries))
	for i, e := range batch.Entries {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d of batch %d: %w", i, batch.Seq, err)
		}
		values[i] = b
	}

	key := w.Key(batch.Destination)
	_, err := w.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (w *EntryWriter) Close() error {
	return w.client.Close()
}

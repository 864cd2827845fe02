// Package sql commits entry batches to a relational table through GORM.
package sql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// Config holds database connection configuration.
type Config struct {
	// DSN is the SQLite data source, e.g. "entries.db" or ":memory:".
	DSN string

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int

	// RetryDelay is the wait after the first failed attempt; it grows
	// linearly with each attempt.
	RetryDelay time.Duration

	// InsertChunk caps the rows per INSERT statement inside a batch.
	InsertChunk int
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.InsertChunk <= 0 {
		c.InsertChunk = 500
	}
}

// EntryRecord is the row stored for each committed entry.
type EntryRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Destination string `gorm:"not null;index:idx_entries_destination_seq,priority:1"`
	Seq         int    `gorm:"not null;index:idx_entries_destination_seq,priority:2"`
	Position    int    `gorm:"not null"`
	Payload     string `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

// TableName returns the table entries are stored in.
func (EntryRecord) TableName() string {
	return "entries"
}

// EntryWriter implements ports.EntryWriter on a GORM database.
// Each batch is inserted in a single transaction.
type EntryWriter struct {
	db     *gorm.DB
	chunk  int
	logger ports.Logger
}

// NewEntryWriter wraps an open database. The entries table must exist; use
// Migrate or Open to create it.
func NewEntryWriter(db *gorm.DB, insertChunk int, logger ports.Logger) *EntryWriter {
	if insertChunk <= 0 {
		insertChunk = 500
	}
	return &EntryWriter{db: db, chunk: insertChunk, logger: logger}
}

// Open connects to the SQLite database in cfg.DSN, retrying the connection
// (never the writes), and migrates the entries table.
func Open(ctx context.Context, cfg Config, logger ports.Logger) (*EntryWriter, error) {
	cfg.ApplyDefaults()
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite dsn is required: %w", domain.ErrInvalidConfig)
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Discard}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		db, err = connect(ctx, cfg.DSN, gormCfg)
		if err == nil {
			break
		}

		if attempt < cfg.MaxRetries {
			wait := time.Duration(attempt) * cfg.RetryDelay
			logger.Warn("database connection attempt failed, retrying",
				ports.Int("attempt", attempt),
				ports.Err(err),
				ports.Duration("backoff", wait),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("database connection canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.MaxRetries, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database ready", ports.String("dsn", cfg.DSN))
	return NewEntryWriter(db, cfg.InsertChunk, logger), nil
}

func connect(ctx context.Context, dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway, and an in-memory database exists
	// per connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the entries table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&EntryRecord{}); err != nil {
		return fmt.Errorf("migrate entries: %w", err)
	}
	return nil
}

// WriteEntries inserts the batch atomically: either every entry is stored or
// none is.
func (w *EntryWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	records := make([]EntryRecord, len(batch.Entries))
	for i, e := range batch.Entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d of batch %d: %w", i, batch.Seq, err)
		}
		records[i] = EntryRecord{
			Destination: batch.Destination,
			Seq:         batch.Seq,
			Position:    i,
			Payload:     string(payload),
		}
	}

	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(records, w.chunk).Error; err != nil {
			return fmt.Errorf("insert batch %d into %s: %w", batch.Seq, batch.Destination, err)
		}
		return nil
	})
}

// Count returns how many entries are stored for a destination.
func (w *EntryWriter) Count(ctx context.Context, destination string) (int64, error) {
	var n int64
	err := w.db.WithContext(ctx).Model(&EntryRecord{}).
		Where("destination = ?", destination).
		Count(&n).Error
	return n, err
}

// Entries returns the stored entries of a destination in commit order.
func (w *EntryWriter) Entries(ctx context.Context, destination string) ([]domain.Entry, error) {
	var records []EntryRecord
	err := w.db.WithContext(ctx).
		Where("destination = ?", destination).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Entry, len(records))
	for i, r := range records {
		if err := json.Unmarshal([]byte(r.Payload), &out[i]); err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", r.ID, err)
		}
	}
	return out, nil
}

// Close closes the underlying connection pool.
func (w *EntryWriter) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

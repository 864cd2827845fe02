// Package kafka commits entry batches to Kafka topics, one message per entry.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// Config holds Kafka producer configuration.
type Config struct {
	Brokers      []string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	// RequiredAcks is -1 for all replicas, 1 for the leader only.
	RequiredAcks int
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required: %w", domain.ErrInvalidConfig)
	}
	return nil
}

// MessageWriter is the subset of *kafkago.Writer used by EntryWriter.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// EntryWriter implements ports.EntryWriter. Each entry becomes one message on
// the topic named after the batch destination, keyed by
// <destination>-<seq>-<position>.
type EntryWriter struct {
	writer MessageWriter
	logger ports.Logger
}

// NewEntryWriter wraps a message writer. The writer must not have a fixed
// Topic, since the topic is taken from each batch.
func NewEntryWriter(writer MessageWriter, logger ports.Logger) *EntryWriter {
	return &EntryWriter{writer: writer, logger: logger}
}

// Open creates a kafka-go writer for the configured brokers.
func Open(cfg Config, logger ports.Logger) (*EntryWriter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafkago.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error("kafka writer: "+fmt.Sprintf(msg, args...))
		}),
	}

	logger.Info("kafka producer initialized",
		ports.Strings("brokers", cfg.Brokers),
		ports.Int("required_acks", cfg.RequiredAcks),
	)
	return NewEntryWriter(w, logger), nil
}

// Messages converts a batch into Kafka messages.
func Messages(batch domain.Batch) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(batch.Entries))
	prefix := batch.Destination + "-" + strconv.Itoa(batch.Seq) + "-"
	for i, e := range batch.Entries {
		value, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode entry %d of batch %d: %w", i, batch.Seq, err)
		}
		msgs = append(msgs, kafkago.Message{
			Topic: batch.Destination,
			Key:   []byte(prefix + strconv.Itoa(i)),
			Value: value,
			Headers: []kafkago.Header{
				{Key: "content-type", Value: []byte("application/json")},
			},
		})
	}
	return msgs, nil
}

// WriteEntries publishes the batch in one WriteMessages call.
func (w *EntryWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	msgs, err := Messages(batch)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages to %s: %w", batch.Destination, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (w *EntryWriter) Close() error {
	return w.writer.Close()
}

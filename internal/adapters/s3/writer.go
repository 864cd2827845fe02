// Package s3 commits each entry batch as one JSON-lines object in an S3
// (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Config holds S3 configuration.
type Config struct {
	Bucket string
	Region string
	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Prefix         string
	ForcePathStyle bool
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required: %w", domain.ErrInvalidConfig)
	}
	return nil
}

// ObjectPutter is the subset of *awss3.Client used by EntryWriter.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// EntryWriter implements ports.EntryWriter.
type EntryWriter struct {
	client ObjectPutter
	bucket string
	prefix string
	logger ports.Logger
}

// NewEntryWriter wraps an S3 client.
func NewEntryWriter(client ObjectPutter, bucket, prefix string, logger ports.Logger) *EntryWriter {
	return &EntryWriter{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Open builds an S3 client from cfg. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain.
func Open(ctx context.Context, cfg Config, logger ports.Logger) (*EntryWriter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 ready",
		ports.String("bucket", cfg.Bucket),
		ports.String("region", cfg.Region),
		ports.String("endpoint", cfg.Endpoint),
	)
	return NewEntryWriter(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// Key returns the object key of a batch. Batches of different runs get
// distinct keys even when they share a destination and sequence number.
func (w *EntryWriter) Key(batch domain.Batch) string {
	if batch.Run == "" {
		return fmt.Sprintf("%s%s/%06d.jsonl", w.prefix, batch.Destination, batch.Seq)
	}
	return fmt.Sprintf("%s%s/%s/%06d.jsonl", w.prefix, batch.Destination, batch.Run, batch.Seq)
}

// WriteEntries uploads the batch as one object.
func (w *EntryWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, e := range batch.Entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode entry %d of batch %d: %w", i, batch.Seq, err)
		}
	}

	key := w.Key(batch)
	_, err := w.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

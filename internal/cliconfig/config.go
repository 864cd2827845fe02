package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/entryship/internal/domain"
)

// Backend names accepted by the backend setting.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendKafka  = "kafka"
	BackendS3     = "s3"
	BackendHTTP   = "http"
	BackendFS     = "fs"
)

// Backends lists every supported backend.
var Backends = []string{BackendSQLite, BackendRedis, BackendKafka, BackendS3, BackendHTTP, BackendFS}

// DefaultSQLiteDSN is the database file used when none is configured.
const DefaultSQLiteDSN = "entryship.db"

// Config holds CLI configuration for entryship.
type Config struct {
	Backend     string
	Destination string

	BatchSize     int
	ChunkSize     int
	Flush         bool
	Follow        bool
	FailurePolicy string

	InputFormat  string
	CSVDelimiter string

	PollInterval    time.Duration
	MaxPollInterval time.Duration

	LogLevel string

	SQLiteDSN string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	KafkaBrokers []string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool

	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration

	OutputDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendSQLite,
		BatchSize:       1000,
		Flush:           true,
		FailurePolicy:   "drop",
		PollInterval:    100 * time.Millisecond,
		MaxPollInterval: 5 * time.Second,
		LogLevel:        "info",
		SQLiteDSN:       DefaultSQLiteDSN,
		RedisAddr:       "localhost:6379",
		RedisKeyPrefix:  "entryship:",
		HTTPTimeout:     15 * time.Second,
		OutputDir:       ".",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if !isBackend(c.Backend) {
		return fmt.Errorf("backend %q is not one of %s: %w", c.Backend, strings.Join(Backends, ", "), domain.ErrInvalidConfig)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size must not be negative: %w", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.MaxPollInterval < c.PollInterval {
		c.MaxPollInterval = c.PollInterval
	}

	switch c.FailurePolicy {
	case "", "drop", "requeue":
	default:
		return fmt.Errorf("failure policy %q is not drop or requeue: %w", c.FailurePolicy, domain.ErrInvalidConfig)
	}

	switch c.Backend {
	case BackendSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("sqlite-dsn is required: %w", domain.ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis-addr is required: %w", domain.ErrInvalidConfig)
		}
	case BackendKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka-brokers is required: %w", domain.ErrInvalidConfig)
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3-bucket is required: %w", domain.ErrInvalidConfig)
		}
	case BackendHTTP:
		if c.ServiceURL == "" {
			return fmt.Errorf("service-url is required: %w", domain.ErrInvalidConfig)
		}
		// Ensure no trailing slash
		c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	case BackendFS:
		if c.OutputDir == "" {
			return fmt.Errorf("output-dir is required: %w", domain.ErrInvalidConfig)
		}
	}

	return nil
}

// Masked returns a copy with secrets replaced, for logging.
func (c Config) Masked() Config {
	if c.AuthKey != "" {
		c.AuthKey = "*****"
	}
	if c.RedisPassword != "" {
		c.RedisPassword = "*****"
	}
	if c.S3SecretKey != "" {
		c.S3SecretKey = "*****"
	}
	return c
}

func isBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list value if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// setListFromString splits a comma-separated list.
func (s *configSetter) setListFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	s.setStrings(flag, out, dst)
}

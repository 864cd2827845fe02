package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/entryship/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %v, want %v", cfg.Backend, BackendSQLite)
	}
	if cfg.BatchSize != 1000 {
		t.Errorf("BatchSize = %v, want 1000", cfg.BatchSize)
	}
	if !cfg.Flush {
		t.Error("Flush = false, want true")
	}
	if cfg.FailurePolicy != "drop" {
		t.Errorf("FailurePolicy = %v, want drop", cfg.FailurePolicy)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want 100ms", cfg.PollInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mod func(c *Config)) Config {
		c := DefaultConfig()
		mod(&c)
		return c
	}

	tests := []struct {
		name           string
		config         Config
		wantErr        bool
		wantServiceURL string
	}{
		{
			name:    "default sqlite",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "backend is case insensitive",
			config:  valid(func(c *Config) { c.Backend = " FS " }),
			wantErr: false,
		},
		{
			name:    "unknown backend",
			config:  valid(func(c *Config) { c.Backend = "mongo" }),
			wantErr: true,
		},
		{
			name:    "zero batch size",
			config:  valid(func(c *Config) { c.BatchSize = 0 }),
			wantErr: true,
		},
		{
			name:    "negative chunk size",
			config:  valid(func(c *Config) { c.ChunkSize = -1 }),
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			config:  valid(func(c *Config) { c.PollInterval = 0 }),
			wantErr: true,
		},
		{
			name:    "unknown failure policy",
			config:  valid(func(c *Config) { c.FailurePolicy = "retry" }),
			wantErr: true,
		},
		{
			name:    "sqlite without dsn",
			config:  valid(func(c *Config) { c.SQLiteDSN = "" }),
			wantErr: true,
		},
		{
			name:    "redis without addr",
			config:  valid(func(c *Config) { c.Backend = BackendRedis; c.RedisAddr = "" }),
			wantErr: true,
		},
		{
			name:    "kafka without brokers",
			config:  valid(func(c *Config) { c.Backend = BackendKafka }),
			wantErr: true,
		},
		{
			name:    "kafka with brokers",
			config:  valid(func(c *Config) { c.Backend = BackendKafka; c.KafkaBrokers = []string{"localhost:9092"} }),
			wantErr: false,
		},
		{
			name:    "s3 without bucket",
			config:  valid(func(c *Config) { c.Backend = BackendS3 }),
			wantErr: true,
		},
		{
			name:    "http without service url",
			config:  valid(func(c *Config) { c.Backend = BackendHTTP }),
			wantErr: true,
		},
		{
			name:           "http trims trailing slash",
			config:         valid(func(c *Config) { c.Backend = BackendHTTP; c.ServiceURL = "http://localhost:8080/" }),
			wantErr:        false,
			wantServiceURL: "http://localhost:8080",
		},
		{
			name:    "fs without dir",
			config:  valid(func(c *Config) { c.Backend = BackendFS; c.OutputDir = "" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if tt.wantServiceURL != "" && tt.config.ServiceURL != tt.wantServiceURL {
				t.Errorf("ServiceURL = %v, want %v", tt.config.ServiceURL, tt.wantServiceURL)
			}
		})
	}
}

func TestConfig_ValidateRaisesMaxPoll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Second
	cfg.MaxPollInterval = time.Second
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxPollInterval != 10*time.Second {
		t.Errorf("MaxPollInterval = %v, want 10s", cfg.MaxPollInterval)
	}
}

func TestConfig_Masked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthKey = "secret"
	cfg.RedisPassword = "pw"
	cfg.S3SecretKey = "s3"

	m := cfg.Masked()
	if m.AuthKey != "*****" || m.RedisPassword != "*****" || m.S3SecretKey != "*****" {
		t.Errorf("Masked() left secrets: %+v", m)
	}
	if cfg.AuthKey != "secret" {
		t.Error("Masked() modified the receiver")
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel(""); err != nil {
		t.Errorf("empty level: %v", err)
	}
	if err := SetLogLevel("DEBUG"); err != nil {
		t.Errorf("debug level: %v", err)
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLogLevel("info")
}

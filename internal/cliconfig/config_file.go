package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly. Backend settings live in their own tables.
type FileConfig struct {
	Backend         string `toml:"backend"`
	Destination     string `toml:"destination"`
	BatchSize       int    `toml:"batch_size"`
	ChunkSize       int    `toml:"chunk_size"`
	Flush           *bool  `toml:"flush"`
	Follow          *bool  `toml:"follow"`
	FailurePolicy   string `toml:"failure_policy"`
	InputFormat     string `toml:"input_format"`
	CSVDelimiter    string `toml:"csv_delimiter"`
	PollInterval    string `toml:"poll_interval"`
	MaxPollInterval string `toml:"max_poll_interval"`
	LogLevel        string `toml:"log_level"`

	SQLite struct {
		DSN string `toml:"dsn"`
	} `toml:"sqlite"`

	Redis struct {
		Addr      string `toml:"addr"`
		Password  string `toml:"password"`
		DB        int    `toml:"db"`
		KeyPrefix string `toml:"key_prefix"`
	} `toml:"redis"`

	Kafka struct {
		Brokers []string `toml:"brokers"`
	} `toml:"kafka"`

	S3 struct {
		Bucket    string `toml:"bucket"`
		Region    string `toml:"region"`
		Endpoint  string `toml:"endpoint"`
		Prefix    string `toml:"prefix"`
		AccessKey string `toml:"access_key"`
		SecretKey string `toml:"secret_key"`
		PathStyle *bool  `toml:"path_style"`
	} `toml:"s3"`

	HTTP struct {
		ServiceURL string `toml:"service_url"`
		AuthKey    string `toml:"auth_key"`
		Timeout    string `toml:"timeout"`
	} `toml:"http"`

	FS struct {
		Dir string `toml:"dir"`
	} `toml:"fs"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.entryship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".entryship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("destination", fc.Destination, &cfg.Destination)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)
	s.setBool("flush", fc.Flush, &cfg.Flush)
	s.setBool("follow", fc.Follow, &cfg.Follow)
	s.setString("failure-policy", fc.FailurePolicy, &cfg.FailurePolicy)
	s.setString("format", fc.InputFormat, &cfg.InputFormat)
	s.setString("csv-delimiter", fc.CSVDelimiter, &cfg.CSVDelimiter)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("max-poll", fc.MaxPollInterval, &cfg.MaxPollInterval); err != nil {
		return err
	}

	s.setString("sqlite-dsn", fc.SQLite.DSN, &cfg.SQLiteDSN)

	s.setString("redis-addr", fc.Redis.Addr, &cfg.RedisAddr)
	s.setString("redis-password", fc.Redis.Password, &cfg.RedisPassword)
	s.setInt("redis-db", fc.Redis.DB, &cfg.RedisDB)
	s.setString("redis-key-prefix", fc.Redis.KeyPrefix, &cfg.RedisKeyPrefix)

	s.setStrings("kafka-brokers", fc.Kafka.Brokers, &cfg.KafkaBrokers)

	s.setString("s3-bucket", fc.S3.Bucket, &cfg.S3Bucket)
	s.setString("s3-region", fc.S3.Region, &cfg.S3Region)
	s.setString("s3-endpoint", fc.S3.Endpoint, &cfg.S3Endpoint)
	s.setString("s3-prefix", fc.S3.Prefix, &cfg.S3Prefix)
	s.setString("s3-access-key", fc.S3.AccessKey, &cfg.S3AccessKey)
	s.setString("s3-secret-key", fc.S3.SecretKey, &cfg.S3SecretKey)
	s.setBool("s3-path-style", fc.S3.PathStyle, &cfg.S3PathStyle)

	s.setString("service-url", fc.HTTP.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.HTTP.AuthKey, &cfg.AuthKey)
	if err := s.setDuration("timeout", fc.HTTP.Timeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setString("output-dir", fc.FS.Dir, &cfg.OutputDir)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

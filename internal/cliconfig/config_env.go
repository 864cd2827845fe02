package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ENTRYSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("backend", os.Getenv("ENTRYSHIP_BACKEND"), &cfg.Backend)
	s.setString("destination", os.Getenv("ENTRYSHIP_DESTINATION"), &cfg.Destination)
	s.setString("failure-policy", os.Getenv("ENTRYSHIP_FAILURE_POLICY"), &cfg.FailurePolicy)
	s.setString("format", os.Getenv("ENTRYSHIP_FORMAT"), &cfg.InputFormat)
	s.setString("csv-delimiter", os.Getenv("ENTRYSHIP_CSV_DELIMITER"), &cfg.CSVDelimiter)
	s.setString("log-level", os.Getenv("ENTRYSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("batch-size", os.Getenv("ENTRYSHIP_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("chunk-size", os.Getenv("ENTRYSHIP_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	s.setBoolFromString("flush", os.Getenv("ENTRYSHIP_FLUSH"), &cfg.Flush)
	s.setBoolFromString("follow", os.Getenv("ENTRYSHIP_FOLLOW"), &cfg.Follow)

	if err := s.setDuration("poll", os.Getenv("ENTRYSHIP_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("max-poll", os.Getenv("ENTRYSHIP_MAX_POLL_INTERVAL"), &cfg.MaxPollInterval); err != nil {
		return err
	}

	s.setString("sqlite-dsn", os.Getenv("ENTRYSHIP_SQLITE_DSN"), &cfg.SQLiteDSN)

	s.setString("redis-addr", os.Getenv("ENTRYSHIP_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("redis-password", os.Getenv("ENTRYSHIP_REDIS_PASSWORD"), &cfg.RedisPassword)
	if err := s.setIntFromString("redis-db", os.Getenv("ENTRYSHIP_REDIS_DB"), &cfg.RedisDB); err != nil {
		return err
	}
	s.setString("redis-key-prefix", os.Getenv("ENTRYSHIP_REDIS_KEY_PREFIX"), &cfg.RedisKeyPrefix)

	s.setListFromString("kafka-brokers", os.Getenv("ENTRYSHIP_KAFKA_BROKERS"), &cfg.KafkaBrokers)

	s.setString("s3-bucket", os.Getenv("ENTRYSHIP_S3_BUCKET"), &cfg.S3Bucket)
	s.setString("s3-region", os.Getenv("ENTRYSHIP_S3_REGION"), &cfg.S3Region)
	s.setString("s3-endpoint", os.Getenv("ENTRYSHIP_S3_ENDPOINT"), &cfg.S3Endpoint)
	s.setString("s3-prefix", os.Getenv("ENTRYSHIP_S3_PREFIX"), &cfg.S3Prefix)
	s.setString("s3-access-key", os.Getenv("ENTRYSHIP_S3_ACCESS_KEY"), &cfg.S3AccessKey)
	s.setString("s3-secret-key", os.Getenv("ENTRYSHIP_S3_SECRET_KEY"), &cfg.S3SecretKey)
	s.setBoolFromString("s3-path-style", os.Getenv("ENTRYSHIP_S3_PATH_STYLE"), &cfg.S3PathStyle)

	s.setString("service-url", os.Getenv("ENTRYSHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("ENTRYSHIP_AUTH_KEY"), &cfg.AuthKey)
	if err := s.setDuration("timeout", os.Getenv("ENTRYSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setString("output-dir", os.Getenv("ENTRYSHIP_OUTPUT_DIR"), &cfg.OutputDir)

	return nil
}

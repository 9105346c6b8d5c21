package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Ranking backends. Empty disables the backend.
	RedisURL      string
	MongoURI      string
	MongoDatabase string

	// Session store
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int

	// Seed generation
	QuestionCount int

	// Clean answers before grading
	RewriteAnswers bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("STEPWISE_PORT", "8090"),

		RedisURL:      os.Getenv("STEPWISE_REDIS_URL"),
		MongoURI:      os.Getenv("STEPWISE_MONGO_URI"),
		MongoDatabase: envOr("STEPWISE_MONGO_DATABASE", "stepwise"),

		SessionTTL:    envDuration("STEPWISE_SESSION_TTL", 2*time.Hour),
		SweepInterval: envDuration("STEPWISE_SWEEP_INTERVAL", 5*time.Minute),

		MaxUploadBytes: envInt64("STEPWISE_MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    envInt("STEPWISE_CHUNK_SIZE", 128),
		ChunkOverlap: envInt("STEPWISE_CHUNK_OVERLAP", 32),

		QuestionCount: envInt("STEPWISE_QUESTION_COUNT", 3),

		RewriteAnswers: envBool("STEPWISE_REWRITE_ANSWERS", true),
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("STEPWISE_PORT must not be empty")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("STEPWISE_SESSION_TTL must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("STEPWISE_MAX_UPLOAD_BYTES must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("STEPWISE_CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("STEPWISE_CHUNK_OVERLAP must be between 0 and the chunk size")
	}
	if c.QuestionCount <= 0 {
		return fmt.Errorf("STEPWISE_QUESTION_COUNT must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

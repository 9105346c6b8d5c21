package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"STEPWISE_PORT", "STEPWISE_DB", "STEPWISE_REDIS_URL", "STEPWISE_MONGO_URI",
		"STEPWISE_MONGO_DATABASE", "STEPWISE_SESSION_TTL", "STEPWISE_SWEEP_INTERVAL",
		"STEPWISE_MAX_UPLOAD_BYTES", "STEPWISE_CHUNK_SIZE", "STEPWISE_CHUNK_OVERLAP",
		"STEPWISE_QUESTION_COUNT", "STEPWISE_REWRITE_ANSWERS",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MongoDatabase != "stepwise" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.SweepInterval != 5*time.Minute {
		t.Errorf("TTL = %v, sweep = %v", cfg.SessionTTL, cfg.SweepInterval)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.ChunkSize != 128 || cfg.ChunkOverlap != 32 || cfg.QuestionCount != 3 {
		t.Errorf("chunking = %d/%d, count = %d", cfg.ChunkSize, cfg.ChunkOverlap, cfg.QuestionCount)
	}
	if !cfg.RewriteAnswers {
		t.Error("RewriteAnswers should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STEPWISE_PORT", "9000")
	t.Setenv("STEPWISE_SESSION_TTL", "30m")
	t.Setenv("STEPWISE_CHUNK_SIZE", "256")
	t.Setenv("STEPWISE_REWRITE_ANSWERS", "false")
	t.Setenv("STEPWISE_QUESTION_COUNT", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" || cfg.SessionTTL != 30*time.Minute || cfg.ChunkSize != 256 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RewriteAnswers {
		t.Error("RewriteAnswers override ignored")
	}
	if cfg.QuestionCount != 3 {
		t.Errorf("unparsable count should fall back, got %d", cfg.QuestionCount)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "8090", MaxUploadBytes: 1, ChunkSize: 128, ChunkOverlap: 32, QuestionCount: 3}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"negative ttl", func(c *Config) { c.SessionTTL = -time.Second }},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap too large", func(c *Config) { c.ChunkOverlap = 128 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero count", func(c *Config) { c.QuestionCount = 0 }},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

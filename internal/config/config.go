// Package config handles pipeline configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"streampro-lake/internal/domain"
)

// Config holds the process-wide settings for one pipeline invocation:
// object-store connection, tier prefixes, and the target ingestion date.
// Loaded once at process entry and passed into each processor's constructor.
type Config struct {
	Env string // environment name: dev (default), test, prod

	// S3-compatible object store (MinIO in dev).
	S3Endpoint string
	S3KeyID    string
	S3Secret   string
	S3Region   string
	S3Secure   bool
	Bucket     string

	// Storage tier prefixes inside the bucket.
	LandingPrefix string
	RawPrefix     string
	TrustedPrefix string

	// SchemaName is the query-engine namespace trusted views live in.
	SchemaName string

	// IngestionDate is the logical batch date (YYYY-MM-DD). Defaults to the
	// current date; overridable per invocation.
	IngestionDate string

	LogLevel string // debug, info, warn, error (default "info")
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if _, err := time.Parse("2006-01-02", c.IngestionDate); err != nil {
		return domain.ErrValidation("ingestion date %q is not YYYY-MM-DD", c.IngestionDate)
	}
	if c.Bucket == "" {
		return domain.ErrValidation("BUCKET is required")
	}
	return nil
}

// Load reads configuration for the given environment: config/<env>.env is
// loaded first (falling back to config/dev.env), then process environment
// variables, which take precedence. Missing values fall back to defaults.
func Load(env string) (*Config, error) {
	if env == "" {
		env = os.Getenv("ENV")
	}
	env = strings.ToLower(env)
	if env == "" {
		env = "dev"
	}

	envFile := fmt.Sprintf("config/%s.env", env)
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = "config/dev.env"
	}
	if err := LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:           env,
		S3Endpoint:    os.Getenv("ENDPOINT"),
		S3KeyID:       os.Getenv("KEY_ID"),
		S3Secret:      os.Getenv("SECRET"),
		S3Region:      os.Getenv("REGION"),
		Bucket:        os.Getenv("BUCKET"),
		LandingPrefix: os.Getenv("LANDING_PREFIX"),
		RawPrefix:     os.Getenv("RAW_PREFIX"),
		TrustedPrefix: os.Getenv("TRUSTED_PREFIX"),
		SchemaName:    os.Getenv("SCHEMA_NAME"),
		IngestionDate: os.Getenv("INGESTION_DATE"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
	if strings.EqualFold(os.Getenv("SECURE"), "true") {
		cfg.S3Secure = true
	}

	// Defaults
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if cfg.LandingPrefix == "" {
		cfg.LandingPrefix = "landing"
	}
	if cfg.RawPrefix == "" {
		cfg.RawPrefix = "raw"
	}
	if cfg.TrustedPrefix == "" {
		cfg.TrustedPrefix = "trusted"
	}
	if cfg.SchemaName == "" {
		cfg.SchemaName = "streampro"
	}
	if cfg.IngestionDate == "" {
		cfg.IngestionDate = time.Now().Format("2006-01-02")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

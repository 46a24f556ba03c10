// Package config loads partsbin settings and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no path is given
const DefaultConfigFile = "partsbin.yaml"

// Config holds all configuration values.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Parser   ParserConfig   `yaml:"parser"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects and locates the storage backend
type DatabaseConfig struct {
	// Backend is "sqlite" or "postgres"
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"` // SQLite file; empty = discover .partsbin/inventory.db
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// ParserConfig controls free-text parsing
type ParserConfig struct {
	UseLLM            bool   `yaml:"use_llm"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"-"` // only from ANTHROPIC_API_KEY
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	Concurrency       int    `yaml:"concurrency"`
}

// DedupConfig mirrors deduplication.Config in file form
type DedupConfig struct {
	CandidateMode string `yaml:"candidate_mode"`
	RecordHistory bool   `yaml:"record_history"`
}

// LogConfig controls logger output
type LogConfig struct {
	File  string `yaml:"file"` // JSON log file; empty = stderr only
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Backend: "sqlite",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "partsbin",
				User:     "partsbin",
				SSLMode:  "prefer",
			},
		},
		Parser: ParserConfig{
			UseLLM:            false,
			RequestsPerMinute: 50,
			Concurrency:       4,
		},
		Dedup: DedupConfig{
			CandidateMode: "contains",
			RecordHistory: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path,
// then environment variables. An empty path reads DefaultConfigFile if it
// exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file; defaults and env only
	default:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays PARTSBIN_* variables
func applyEnv(cfg *Config) error {
	cfg.Database.Backend = getEnv("PARTSBIN_DB_BACKEND", cfg.Database.Backend)
	cfg.Database.Path = getEnv("PARTSBIN_DB_PATH", cfg.Database.Path)

	pg := &cfg.Database.Postgres
	pg.Host = getEnv("PARTSBIN_PG_HOST", pg.Host)
	pg.Database = getEnv("PARTSBIN_PG_DATABASE", pg.Database)
	pg.User = getEnv("PARTSBIN_PG_USER", pg.User)
	pg.Password = getEnv("PARTSBIN_PG_PASSWORD", pg.Password)
	pg.SSLMode = getEnv("PARTSBIN_PG_SSLMODE", pg.SSLMode)
	if err := parseEnvInt("PARTSBIN_PG_PORT", &pg.Port); err != nil {
		return err
	}

	if err := parseEnvBool("PARTSBIN_USE_LLM", &cfg.Parser.UseLLM); err != nil {
		return err
	}
	cfg.Parser.Model = getEnv("PARTSBIN_LLM_MODEL", cfg.Parser.Model)
	cfg.Parser.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.Parser.APIKey)
	if err := parseEnvInt("PARTSBIN_LLM_RPM", &cfg.Parser.RequestsPerMinute); err != nil {
		return err
	}
	if err := parseEnvInt("PARTSBIN_PARSE_CONCURRENCY", &cfg.Parser.Concurrency); err != nil {
		return err
	}

	cfg.Dedup.CandidateMode = getEnv("PARTSBIN_DEDUP_CANDIDATE_MODE", cfg.Dedup.CandidateMode)
	if err := parseEnvBool("PARTSBIN_DEDUP_RECORD_HISTORY", &cfg.Dedup.RecordHistory); err != nil {
		return err
	}

	cfg.Log.File = getEnv("PARTSBIN_LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("PARTSBIN_LOG_LEVEL", cfg.Log.Level)

	return nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	switch c.Database.Backend {
	case "sqlite":
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres backend")
		}
		if c.Database.Postgres.Port <= 0 || c.Database.Postgres.Port > 65535 {
			return fmt.Errorf("database.postgres.port must be between 1 and 65535 (got %d)", c.Database.Postgres.Port)
		}
	default:
		return fmt.Errorf("database.backend must be \"sqlite\" or \"postgres\" (got %q)", c.Database.Backend)
	}

	if c.Parser.RequestsPerMinute < 0 {
		return fmt.Errorf("parser.requests_per_minute cannot be negative (got %d)", c.Parser.RequestsPerMinute)
	}
	if c.Parser.Concurrency < 1 || c.Parser.Concurrency > 64 {
		return fmt.Errorf("parser.concurrency must be between 1 and 64 (got %d)", c.Parser.Concurrency)
	}

	switch strings.ToLower(c.Dedup.CandidateMode) {
	case "exact", "contains":
	default:
		return fmt.Errorf("dedup.candidate_mode must be \"exact\" or \"contains\" (got %q)", c.Dedup.CandidateMode)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLogLevel maps a level name to slog.Level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error (got %q)", s)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

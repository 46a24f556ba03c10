package deduplication

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MatchMode selects how candidate names are compared
type MatchMode string

const (
	// MatchExact requires normalized names to be equal
	MatchExact MatchMode = "exact"
	// MatchContains also accepts one normalized name containing the other
	MatchContains MatchMode = "contains"
)

// Valid reports whether m is a known mode
func (m MatchMode) Valid() bool {
	return m == MatchExact || m == MatchContains
}

// Config holds configuration for the deduplication engine
type Config struct {
	// CandidateMode is the name rule used by FindCandidates when listing
	// merge candidates for review. AnnotateAll always uses exact matching.
	// Default: contains (the review list favors recall; "LED" finds "RGB LED")
	CandidateMode MatchMode

	// RecordHistory writes a merge_history row for every successful merge
	// Default: true
	RecordHistory bool
}

// DefaultConfig returns the default deduplication configuration
func DefaultConfig() Config {
	return Config{
		CandidateMode: MatchContains,
		RecordHistory: true,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if !c.CandidateMode.Valid() {
		return fmt.Errorf("candidate_mode must be %q or %q (got %q)", MatchExact, MatchContains, c.CandidateMode)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf("Config{CandidateMode: %s, RecordHistory: %t}", c.CandidateMode, c.RecordHistory)
}

// ConfigFromEnv overlays environment variables on base
//
// Environment variables:
//   - PARTSBIN_DEDUP_CANDIDATE_MODE: "exact" or "contains" (default: contains)
//   - PARTSBIN_DEDUP_RECORD_HISTORY: write merge history rows (default: true)
//
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv(base Config) (Config, error) {
	cfg := base

	if value := strings.TrimSpace(os.Getenv("PARTSBIN_DEDUP_CANDIDATE_MODE")); value != "" {
		cfg.CandidateMode = MatchMode(strings.ToLower(value))
	}
	if err := parseEnvBool("PARTSBIN_DEDUP_RECORD_HISTORY", &cfg.RecordHistory); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}

	return cfg, nil
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

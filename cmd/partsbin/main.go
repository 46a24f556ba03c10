package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/partsbin/internal/config"
	"github.com/steveyegge/partsbin/internal/deduplication"
	"github.com/steveyegge/partsbin/internal/parser"
	"github.com/steveyegge/partsbin/internal/storage"
)

var (
	configPath string
	dbPath     string
	jsonOutput bool

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	store    storage.Storage
	engine   *deduplication.Engine
)

// Command annotations read by the root pre-run hook
const (
	createsDatabase = "creates-database" // may create a new SQLite file
	skipsDatabase   = "skips-database"   // never opens the store
)

var rootCmd = &cobra.Command{
	Use:   "partsbin",
	Short: "Hardware parts inventory with duplicate review",
	Long: `partsbin keeps a catalog of electronic components entered as free text.

Components that look like the same part are flagged so they can be merged,
or marked as not similar so they are never flagged again.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupConfigAndLogger()

		if cmd.Annotations[skipsDatabase] == "true" || cmd.Name() == "help" {
			return
		}

		ctx := context.Background()
		var err error
		store, err = openStore(ctx, cfg, dbPath, cmd.Annotations[createsDatabase] == "true")
		if err != nil {
			fatalf("%v", err)
		}

		engine, err = newEngine(store, cfg, logger)
		if err != nil {
			fatalf("%v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./partsbin.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: auto-discover .partsbin/*.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupConfigAndLogger() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		fatalf("%v", err)
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		fatalf("%v", err)
	}
	logger, closeLog = config.SetupLogger(cfg.Log.File, level)
	slog.SetDefault(logger)
}

// newEngine builds the deduplication engine from the loaded configuration
func newEngine(store storage.Storage, cfg config.Config, logger *slog.Logger) (*deduplication.Engine, error) {
	dedupCfg, err := deduplication.ConfigFromEnv(deduplication.Config{
		CandidateMode: deduplication.MatchMode(strings.ToLower(cfg.Dedup.CandidateMode)),
		RecordHistory: cfg.Dedup.RecordHistory,
	})
	if err != nil {
		return nil, err
	}
	return deduplication.NewEngine(store, dedupCfg, logger)
}

// newParser returns the LLM parser when enabled, otherwise the regex parser
func newParser(cfg config.Config, logger *slog.Logger) parser.Parser {
	if !cfg.Parser.UseLLM {
		return parser.NewRegexParser()
	}

	p, err := parser.NewLLMParser(parser.LLMConfig{
		APIKey:            cfg.Parser.APIKey,
		Model:             cfg.Parser.Model,
		RequestsPerMinute: cfg.Parser.RequestsPerMinute,
	}, logger)
	if err != nil {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v, using the pattern parser\n", yellow("Warning:"), err)
		return parser.NewRegexParser()
	}
	return p
}

// fatalf prints a red error and exits
func fatalf(format string, args ...interface{}) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), fmt.Sprintf(format, args...))
	if store != nil {
		_ = store.Close()
	}
	if closeLog != nil {
		_ = closeLog()
	}
	os.Exit(1)
}

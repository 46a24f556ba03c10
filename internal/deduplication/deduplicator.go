package deduplication

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

// Deduplicator defines the duplicate review workflow over a component store:
// list components with their probable-duplicate flag, drill into one
// component's candidates, then either merge or suppress the pair.
//
// Example usage:
//
//	engine, err := NewEngine(store, DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	candidates, err := engine.FindCandidates(ctx, id)
//	if err != nil {
//	    return err
//	}
//	for _, c := range candidates {
//	    fmt.Printf("%d %s\n", c.ID, c.Name)
//	}
//
//	// Confirmed duplicate: fold 2 into 1
//	merged, err := engine.Merge(ctx, 2, 1)
//
//	// False positive: never flag the pair again
//	err = engine.Suppress(ctx, 1, 3)
type Deduplicator interface {
	// ListAnnotated returns the components matching filter, each flagged with
	// HasSimilar. Flags are computed against the whole catalog, not just the
	// filtered rows.
	ListAnnotated(ctx context.Context, filter types.ComponentFilter) ([]*types.AnnotatedComponent, error)

	// FindCandidates returns the probable duplicates of targetID ordered by
	// name then id. Returns ErrNotFound if the target does not exist.
	FindCandidates(ctx context.Context, targetID int64) ([]*types.Component, error)

	// Suppress records that a and b are not duplicates.
	// Returns ErrInvalidArgument if a == b and ErrNotFound if either is missing.
	Suppress(ctx context.Context, a, b int64) error

	// IsSuppressed reports whether the pair has been suppressed, in either order
	IsSuppressed(ctx context.Context, a, b int64) (bool, error)

	// Merge folds source into target and deletes source.
	// Returns the updated target.
	Merge(ctx context.Context, sourceID, targetID int64) (*types.Component, error)
}

// Engine implements Deduplicator on top of a storage.Storage
type Engine struct {
	store  storage.Storage
	config Config
	logger *slog.Logger
}

var _ Deduplicator = (*Engine)(nil)

// NewEngine creates a deduplication engine. A nil logger discards output.
func NewEngine(store storage.Storage, cfg Config, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		store:  store,
		config: cfg,
		logger: logger.With("component", "deduplication"),
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

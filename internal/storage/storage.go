package storage

import (
	"context"
	"errors"

	"github.com/steveyegge/partsbin/internal/types"
)

// Sentinel errors for storage operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the referenced component does not exist.
	ErrNotFound = errors.New("component not found")

	// ErrInvalidField indicates an update touched a field that cannot be changed.
	ErrInvalidField = errors.New("invalid field for update")
)

// AllowedUpdateFields lists the component columns UpdateComponent accepts.
// id and created_at are never writable.
var AllowedUpdateFields = map[string]bool{
	"name":           true,
	"category":       true,
	"specifications": true,
	"source":         true,
	"quantity":       true,
	"storage":        true,
}

// ComponentStore is the flat record store for catalog components
type ComponentStore interface {
	CreateComponent(ctx context.Context, component *types.Component) error
	// GetComponent returns an error wrapping ErrNotFound when the id does not exist
	GetComponent(ctx context.Context, id int64) (*types.Component, error)
	// ListComponents returns components ordered by category, name, id
	ListComponents(ctx context.Context, filter types.ComponentFilter) ([]*types.Component, error)
	UpdateComponent(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteComponent(ctx context.Context, id int64) error
}

// ExclusionStore persists "confirmed not duplicate" pairs.
// Implementations store one canonical row per unordered pair, so lookups are
// symmetric by construction.
type ExclusionStore interface {
	// AddExclusion is idempotent: inserting an existing pair is a no-op
	AddExclusion(ctx context.Context, a, b int64) error
	HasExclusion(ctx context.Context, a, b int64) (bool, error)
	// ListExclusionsFor returns the ids excluded against id, including ids of deleted components
	ListExclusionsFor(ctx context.Context, id int64) ([]int64, error)
	ListExclusions(ctx context.Context) ([]types.ExclusionPair, error)
	// PruneExclusions removes pairs referencing components that no longer exist
	PruneExclusions(ctx context.Context) (int, error)
}

// MergeLog records merges for later inspection
type MergeLog interface {
	RecordMerge(ctx context.Context, record *types.MergeRecord) error
	// GetMergeHistory returns merges touching componentID (0 = all), newest first
	GetMergeHistory(ctx context.Context, componentID int64, limit int) ([]*types.MergeRecord, error)
}

// Tx is the set of operations available inside a transaction
type Tx interface {
	ComponentStore
	ExclusionStore
	MergeLog
}

// Storage defines the interface for inventory storage backends
type Storage interface {
	Tx

	// RunInTransaction runs fn against a transactional view of the store.
	// If fn returns an error the transaction is rolled back and the error is returned.
	// Writers are serialized: a transaction that deletes a component is visible
	// to the next writer before it reads.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Lifecycle
	Close() error
}

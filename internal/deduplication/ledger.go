package deduplication

import (
	"context"

	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

// ExclusionSet is an in-memory symmetric set of excluded id pairs.
// The zero value is empty and Contains on it always returns false.
type ExclusionSet struct {
	pairs map[[2]int64]struct{}
}

// NewExclusionSet builds a set from stored pairs
func NewExclusionSet(pairs ...types.ExclusionPair) ExclusionSet {
	s := ExclusionSet{pairs: make(map[[2]int64]struct{}, len(pairs))}
	for _, p := range pairs {
		s.Add(p.Low, p.High)
	}
	return s
}

// Add excludes the unordered pair (a, b). Self pairs are ignored.
func (s *ExclusionSet) Add(a, b int64) {
	pair, err := types.NewExclusionPair(a, b)
	if err != nil {
		return
	}
	if s.pairs == nil {
		s.pairs = make(map[[2]int64]struct{})
	}
	s.pairs[[2]int64{pair.Low, pair.High}] = struct{}{}
}

// Contains reports whether (a, b) is excluded, in either order
func (s ExclusionSet) Contains(a, b int64) bool {
	pair, err := types.NewExclusionPair(a, b)
	if err != nil {
		return false
	}
	_, ok := s.pairs[[2]int64{pair.Low, pair.High}]
	return ok
}

// Len returns the number of unordered pairs
func (s ExclusionSet) Len() int {
	return len(s.pairs)
}

// Suppress implements Deduplicator
func (e *Engine) Suppress(ctx context.Context, a, b int64) error {
	if a == b {
		return invalidArgument("cannot mark component %d as not similar to itself", a)
	}

	err := e.store.RunInTransaction(ctx, func(tx storage.Tx) error {
		for _, id := range []int64{a, b} {
			if _, err := tx.GetComponent(ctx, id); err != nil {
				return storeErr("get component", err, id)
			}
		}
		if err := tx.AddExclusion(ctx, a, b); err != nil {
			return storeErr("add exclusion", err, a, b)
		}
		return nil
	})
	if err != nil {
		return storeErr("suppress", err, a, b)
	}

	e.logger.Info("marked not similar", "component_id", a, "other_id", b)
	return nil
}

// IsSuppressed implements Deduplicator
func (e *Engine) IsSuppressed(ctx context.Context, a, b int64) (bool, error) {
	ok, err := e.store.HasExclusion(ctx, a, b)
	if err != nil {
		return false, storeErr("has exclusion", err, a, b)
	}
	return ok, nil
}

// ListExclusions returns every stored pair, including pairs whose components
// have since been deleted
func (e *Engine) ListExclusions(ctx context.Context) ([]types.ExclusionPair, error) {
	pairs, err := e.store.ListExclusions(ctx)
	if err != nil {
		return nil, storeErr("list exclusions", err)
	}
	return pairs, nil
}

// PruneExclusions removes pairs that reference deleted components.
// Merge never prunes; orphaned rows are harmless until this runs.
func (e *Engine) PruneExclusions(ctx context.Context) (int, error) {
	n, err := e.store.PruneExclusions(ctx)
	if err != nil {
		return 0, storeErr("prune exclusions", err)
	}
	if n > 0 {
		e.logger.Info("pruned orphaned exclusions", "count", n)
	}
	return n, nil
}

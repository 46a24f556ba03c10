package deduplication

import (
	"context"
	"sort"
	"strings"

	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
	"golang.org/x/text/cases"
)

// NormalizeName trims surrounding whitespace and applies Unicode case
// folding, so names equal under strings.EqualFold normalize to the same
// string ("ſ" and "S" both become "s").
func NormalizeName(name string) string {
	// A Caser keeps state between calls and is not shared.
	return cases.Fold().String(strings.TrimSpace(name))
}

// namesMatch applies mode to two already-normalized names
func namesMatch(a, b string, mode MatchMode) bool {
	if a == b {
		return true
	}
	if mode != MatchContains || a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// AnnotateAll flags every component that has another component in the same
// category with an equal normalized name, unless the pair is excluded.
// Output order matches input order and the input is not modified.
func AnnotateAll(components []*types.Component, exclusions ExclusionSet) []*types.AnnotatedComponent {
	// category -> normalized name -> ids
	buckets := make(map[string]map[string][]int64)
	for _, c := range components {
		byName, ok := buckets[c.Category]
		if !ok {
			byName = make(map[string][]int64)
			buckets[c.Category] = byName
		}
		key := NormalizeName(c.Name)
		byName[key] = append(byName[key], c.ID)
	}

	out := make([]*types.AnnotatedComponent, len(components))
	for i, c := range components {
		annotated := &types.AnnotatedComponent{Component: *c}
		for _, other := range buckets[c.Category][NormalizeName(c.Name)] {
			if other == c.ID || exclusions.Contains(c.ID, other) {
				continue
			}
			annotated.HasSimilar = true
			break
		}
		out[i] = annotated
	}

	return out
}

// ListAnnotated implements Deduplicator
func (e *Engine) ListAnnotated(ctx context.Context, filter types.ComponentFilter) ([]*types.AnnotatedComponent, error) {
	var result []*types.AnnotatedComponent

	err := e.store.RunInTransaction(ctx, func(tx storage.Tx) error {
		all, err := tx.ListComponents(ctx, types.ComponentFilter{})
		if err != nil {
			return storeErr("list components", err)
		}
		pairs, err := tx.ListExclusions(ctx)
		if err != nil {
			return storeErr("list exclusions", err)
		}

		annotated := AnnotateAll(all, NewExclusionSet(pairs...))
		if isEmptyFilter(filter) {
			result = annotated
			return nil
		}

		// Flags come from the whole catalog; the filter only picks rows.
		visible, err := tx.ListComponents(ctx, filter)
		if err != nil {
			return storeErr("list components", err)
		}
		byID := make(map[int64]*types.AnnotatedComponent, len(annotated))
		for _, a := range annotated {
			byID[a.ID] = a
		}
		result = make([]*types.AnnotatedComponent, 0, len(visible))
		for _, c := range visible {
			if a, ok := byID[c.ID]; ok {
				result = append(result, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("list annotated", err)
	}

	return result, nil
}

func isEmptyFilter(f types.ComponentFilter) bool {
	return strings.TrimSpace(f.Query) == "" && len(f.Categories) == 0 &&
		f.MinQuantity == nil && f.MaxQuantity == nil && f.Storage == "" &&
		f.CreatedAfter == nil && f.CreatedBefore == nil && f.ZeroQuantity == nil &&
		f.Limit <= 0
}

// FindCandidates implements Deduplicator
func (e *Engine) FindCandidates(ctx context.Context, targetID int64) ([]*types.Component, error) {
	var candidates []*types.Component

	err := e.store.RunInTransaction(ctx, func(tx storage.Tx) error {
		target, err := tx.GetComponent(ctx, targetID)
		if err != nil {
			return storeErr("get component", err, targetID)
		}

		peers, err := tx.ListComponents(ctx, types.ComponentFilter{Categories: []string{target.Category}})
		if err != nil {
			return storeErr("list components", err, targetID)
		}

		excluded, err := tx.ListExclusionsFor(ctx, targetID)
		if err != nil {
			return storeErr("list exclusions", err, targetID)
		}
		skip := make(map[int64]bool, len(excluded))
		for _, id := range excluded {
			skip[id] = true
		}

		targetName := NormalizeName(target.Name)
		for _, peer := range peers {
			if peer.ID == targetID || skip[peer.ID] || peer.Category != target.Category {
				continue
			}
			if namesMatch(targetName, NormalizeName(peer.Name), e.config.CandidateMode) {
				candidates = append(candidates, peer)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("find candidates", err, targetID)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Name != candidates[j].Name {
			return candidates[i].Name < candidates[j].Name
		}
		return candidates[i].ID < candidates[j].ID
	})

	e.logger.Debug("found candidates", "component_id", targetID, "count", len(candidates), "mode", e.config.CandidateMode)
	return candidates, nil
}

// Package deduplication finds, suppresses and merges near-duplicate catalog
// components.
//
// # Overview
//
// Components are entered from free text, so the same part is often recorded
// twice with different wording, storage location or vendor notes. This
// package provides three pieces that work over a storage.Storage:
//
//  1. Similarity matching (AnnotateAll, FindCandidates): flags components that
//     share a category and a normalized name with some other component
//  2. Exclusion ledger (Suppress, IsSuppressed): a persistent symmetric set of
//     pairs confirmed NOT to be duplicates
//  3. Merging (Merge): folds one component into another and deletes it
//
// # Similarity
//
// Two components are similar when they have the same category (exact,
// case-sensitive) and their names are equal after trimming whitespace and
// folding case, unless the pair has been suppressed. Components in different
// categories are never compared. The relation is symmetric but not
// transitive, and no score is produced.
//
// AnnotateAll always uses exact name equality. FindCandidates, which builds
// the list a user reviews for one component, uses Config.CandidateMode: with
// MatchContains (the default) "LED" also finds "RGB LED". Blank names never
// match by containment.
//
// # Exclusions
//
// Each suppressed pair is stored once with the smaller id first, so lookups
// in either order agree. Suppression is permanent. Rows may outlive a
// component deleted by a merge; they never match a live id and are removed
// only by PruneExclusions.
//
// # Merge policy
//
// Merge(source, target) keeps the target's name, category, vendor source and
// created_at. Quantities are added. Specifications and storage are combined
// with MergeText:
//
//	MergeText("10k ohm", "")     == "10k ohm"
//	MergeText("", "0603")        == "0603"
//	MergeText("10k ohm", "0603") == "10k ohm; 0603"
//
// The update, the delete and the optional history row run in one store
// transaction. A concurrent second merge of the same source sees ErrNotFound.
//
// # Errors
//
// Operations return ErrNotFound, ErrInvalidArgument, or a *StoreError that
// matches ErrStoreFailure. A failure to delete the source after the target
// update is a *StoreError with Partial set, which also matches
// ErrPartialMerge. Nothing is retried.
//
// # Usage
//
//	engine, err := deduplication.NewEngine(store, deduplication.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	rows, err := engine.ListAnnotated(ctx, types.ComponentFilter{})
//	for _, row := range rows {
//	    if row.HasSimilar {
//	        candidates, _ := engine.FindCandidates(ctx, row.ID)
//	        // show candidates, then Merge or Suppress
//	    }
//	}
package deduplication

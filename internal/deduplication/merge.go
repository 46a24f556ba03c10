package deduplication

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

// MergeText reconciles one free-text field. A blank or identical source keeps
// the target, a blank target adopts the source, and otherwise the result is
// "{target}; {source}".
func MergeText(target, source string) string {
	switch {
	case strings.TrimSpace(source) == "" || source == target:
		return target
	case strings.TrimSpace(target) == "":
		return source
	default:
		return target + "; " + source
	}
}

// MergePreview returns what target will look like after source is merged
// into it. Neither argument is modified.
func MergePreview(source, target *types.Component) *types.Component {
	merged := target.Clone()
	merged.Quantity = target.Quantity + source.Quantity
	merged.Specifications = MergeText(target.Specifications, source.Specifications)
	merged.Storage = MergeText(target.Storage, source.Storage)
	return merged
}

// Merge implements Deduplicator. Name, category, vendor source and created_at
// always come from the target.
func (e *Engine) Merge(ctx context.Context, sourceID, targetID int64) (*types.Component, error) {
	if sourceID == targetID {
		return nil, invalidArgument("cannot merge component %d into itself", sourceID)
	}

	var merged *types.Component
	err := e.store.RunInTransaction(ctx, func(tx storage.Tx) error {
		source, target, err := getPair(ctx, tx, sourceID, targetID)
		if err != nil {
			return err
		}

		merged = MergePreview(source, target)
		err = tx.UpdateComponent(ctx, targetID, map[string]interface{}{
			"quantity":       merged.Quantity,
			"specifications": merged.Specifications,
			"storage":        merged.Storage,
		})
		if err != nil {
			return storeErr("update target", err, targetID)
		}

		if err := tx.DeleteComponent(ctx, sourceID); err != nil {
			return &StoreError{Op: "delete source", IDs: []int64{sourceID, targetID}, Partial: true, Err: err}
		}

		if e.config.RecordHistory {
			record := &types.MergeRecord{
				ID:             uuid.NewString(),
				SourceID:       sourceID,
				TargetID:       targetID,
				SourceName:     source.Name,
				SourceQuantity: source.Quantity,
				MergedAt:       time.Now().UTC(),
			}
			if err := tx.RecordMerge(ctx, record); err != nil {
				return storeErr("record merge", err, sourceID, targetID)
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("merge failed", "source_id", sourceID, "target_id", targetID, "error", err)
		return nil, storeErr("merge", err, sourceID, targetID)
	}

	e.logger.Info("merged components", "source_id", sourceID, "target_id", targetID, "quantity", merged.Quantity)
	return merged, nil
}

// getPair reads both components in ascending id order. Backends that lock
// rows on read then lock a pair in the same order whichever direction it is
// merged in, so opposite merges queue instead of deadlocking.
func getPair(ctx context.Context, tx storage.Tx, sourceID, targetID int64) (source, target *types.Component, err error) {
	first, second := sourceID, targetID
	if first > second {
		first, second = second, first
	}

	got := make(map[int64]*types.Component, 2)
	for _, id := range []int64{first, second} {
		c, err := tx.GetComponent(ctx, id)
		if err != nil {
			return nil, nil, storeErr("get component", err, id)
		}
		got[id] = c
	}
	return got[sourceID], got[targetID], nil
}

// MergeHistory returns recorded merges touching componentID (0 = all), newest first
func (e *Engine) MergeHistory(ctx context.Context, componentID int64, limit int) ([]*types.MergeRecord, error) {
	records, err := e.store.GetMergeHistory(ctx, componentID, limit)
	if err != nil {
		return nil, storeErr("merge history", err, componentID)
	}
	return records, nil
}

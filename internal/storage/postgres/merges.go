package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/partsbin/internal/types"
)

// RecordMerge appends a merge audit row
func (s *queries) RecordMerge(ctx context.Context, record *types.MergeRecord) error {
	if record.ID == "" {
		return fmt.Errorf("merge record id is required")
	}
	if record.MergedAt.IsZero() {
		record.MergedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO merge_history (id, source_id, target_id, source_name, source_quantity, merged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, record.SourceID, record.TargetID, record.SourceName, record.SourceQuantity, record.MergedAt)
	if err != nil {
		return fmt.Errorf("failed to record merge: %w", err)
	}

	return nil
}

// GetMergeHistory returns merges involving componentID (0 = all), newest first
func (s *queries) GetMergeHistory(ctx context.Context, componentID int64, limit int) ([]*types.MergeRecord, error) {
	query := `
		SELECT id, source_id, target_id, source_name, source_quantity, merged_at
		FROM merge_history
	`
	args := []interface{}{}
	if componentID != 0 {
		query += ` WHERE source_id = $1 OR target_id = $1`
		args = append(args, componentID)
	}
	query += ` ORDER BY merged_at DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge history: %w", err)
	}
	defer rows.Close()

	var records []*types.MergeRecord
	for rows.Next() {
		var r types.MergeRecord
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.SourceName, &r.SourceQuantity, &r.MergedAt); err != nil {
			return nil, fmt.Errorf("failed to scan merge record: %w", err)
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}

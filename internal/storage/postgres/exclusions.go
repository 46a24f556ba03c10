package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/partsbin/internal/types"
)

// AddExclusion records that a and b are not duplicates. Repeated calls are no-ops.
func (s *queries) AddExclusion(ctx context.Context, a, b int64) error {
	pair, err := types.NewExclusionPair(a, b)
	if err != nil {
		return err
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO component_exclusions (low_id, high_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (low_id, high_id) DO NOTHING
	`, pair.Low, pair.High, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add exclusion %d/%d: %w", a, b, err)
	}

	return nil
}

// HasExclusion reports whether the unordered pair (a, b) is excluded
func (s *queries) HasExclusion(ctx context.Context, a, b int64) (bool, error) {
	pair, err := types.NewExclusionPair(a, b)
	if err != nil {
		return false, nil
	}

	var exists bool
	err = s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM component_exclusions WHERE low_id = $1 AND high_id = $2
		)
	`, pair.Low, pair.High).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check exclusion %d/%d: %w", a, b, err)
	}

	return exists, nil
}

// ListExclusionsFor returns every id paired with id, ascending
func (s *queries) ListExclusionsFor(ctx context.Context, id int64) ([]int64, error) {
	rows, err := s.q.Query(ctx, `
		SELECT CASE WHEN low_id = $1 THEN high_id ELSE low_id END AS other_id
		FROM component_exclusions
		WHERE low_id = $1 OR high_id = $1
		ORDER BY other_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusions for %d: %w", id, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var other int64
		if err := rows.Scan(&other); err != nil {
			return nil, err
		}
		ids = append(ids, other)
	}

	return ids, rows.Err()
}

// ListExclusions returns all exclusion pairs ordered by (low, high)
func (s *queries) ListExclusions(ctx context.Context) ([]types.ExclusionPair, error) {
	rows, err := s.q.Query(ctx, `
		SELECT low_id, high_id, created_at
		FROM component_exclusions
		ORDER BY low_id, high_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusions: %w", err)
	}
	defer rows.Close()

	var pairs []types.ExclusionPair
	for rows.Next() {
		var pair types.ExclusionPair
		if err := rows.Scan(&pair.Low, &pair.High, &pair.CreatedAt); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}

// PruneExclusions deletes pairs where either side no longer exists
func (s *queries) PruneExclusions(ctx context.Context) (int, error) {
	tag, err := s.q.Exec(ctx, `
		DELETE FROM component_exclusions e
		WHERE NOT EXISTS (SELECT 1 FROM components c WHERE c.id = e.low_id)
		   OR NOT EXISTS (SELECT 1 FROM components c WHERE c.id = e.high_id)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune exclusions: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

const componentColumns = `id, name, category, specifications, source, quantity, storage, created_at`

// CreateComponent inserts a new component and sets its ID and CreatedAt
func (s *queries) CreateComponent(ctx context.Context, component *types.Component) error {
	if err := component.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if component.CreatedAt.IsZero() {
		component.CreatedAt = time.Now().UTC()
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO components (name, category, specifications, source, quantity, storage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		component.Name, component.Category, component.Specifications,
		component.Source, component.Quantity, component.Storage, component.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert component: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read component id: %w", err)
	}
	component.ID = id

	return nil
}

// GetComponent retrieves a component by ID
func (s *queries) GetComponent(ctx context.Context, id int64) (*types.Component, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+componentColumns+` FROM components WHERE id = ?`, id)

	component, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("component %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get component %d: %w", id, err)
	}

	return component, nil
}

// ListComponents finds components matching the filter, ordered by category, name, id
func (s *queries) ListComponents(ctx context.Context, filter types.ComponentFilter) ([]*types.Component, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if query := strings.TrimSpace(filter.Query); query != "" {
		whereClauses = append(whereClauses,
			"(name LIKE ? OR specifications LIKE ? OR source LIKE ? OR category LIKE ? OR storage LIKE ?)")
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}

	if len(filter.Categories) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Categories)), ",")
		whereClauses = append(whereClauses, fmt.Sprintf("category IN (%s)", placeholders))
		for _, category := range filter.Categories {
			args = append(args, category)
		}
	}

	if filter.MinQuantity != nil {
		whereClauses = append(whereClauses, "quantity >= ?")
		args = append(args, *filter.MinQuantity)
	}

	if filter.MaxQuantity != nil {
		whereClauses = append(whereClauses, "quantity <= ?")
		args = append(args, *filter.MaxQuantity)
	}

	if filter.Storage != "" {
		whereClauses = append(whereClauses, "storage LIKE ?")
		args = append(args, "%"+filter.Storage+"%")
	}

	if filter.CreatedAfter != nil {
		whereClauses = append(whereClauses, "created_at >= ?")
		args = append(args, filter.CreatedAfter.UTC())
	}

	if filter.CreatedBefore != nil {
		whereClauses = append(whereClauses, "created_at <= ?")
		args = append(args, filter.CreatedBefore.UTC())
	}

	if filter.ZeroQuantity != nil {
		if *filter.ZeroQuantity {
			whereClauses = append(whereClauses, "quantity = 0")
		} else {
			whereClauses = append(whereClauses, "quantity > 0")
		}
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	limitSQL := ""
	if filter.Limit > 0 {
		limitSQL = fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	querySQL := fmt.Sprintf(`
		SELECT %s
		FROM components
		%s
		ORDER BY category, name, id
		%s
	`, componentColumns, whereSQL, limitSQL)

	rows, err := s.q.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var components []*types.Component
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, component)
	}

	return components, rows.Err()
}

// UpdateComponent updates fields on a component.
// Keys must be listed in storage.AllowedUpdateFields.
func (s *queries) UpdateComponent(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses, args, err := buildUpdate(updates)
	if err != nil {
		return err
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE components SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	result, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update component %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("component %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// DeleteComponent removes a component. Exclusion rows that reference it are kept.
func (s *queries) DeleteComponent(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete component %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("component %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// buildUpdate returns "col = ?" clauses in stable column order with their arguments.
func buildUpdate(updates map[string]interface{}) ([]string, []interface{}, error) {
	keys, err := storage.ValidateUpdates(updates)
	if err != nil {
		return nil, nil, err
	}

	setClauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, updates[key])
	}

	return setClauses, args, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComponent(row rowScanner) (*types.Component, error) {
	var c types.Component
	if err := row.Scan(
		&c.ID, &c.Name, &c.Category, &c.Specifications,
		&c.Source, &c.Quantity, &c.Storage, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

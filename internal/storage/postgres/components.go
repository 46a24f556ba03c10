package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

const componentColumns = `id, name, category, specifications, source, quantity, storage, created_at`

// pgCheckViolation is the SQLSTATE for a CHECK constraint failure
const pgCheckViolation = "23514"

// CreateComponent inserts a new component and sets its ID and CreatedAt
func (s *queries) CreateComponent(ctx context.Context, component *types.Component) error {
	if err := component.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if component.CreatedAt.IsZero() {
		component.CreatedAt = time.Now().UTC()
	}

	err := s.q.QueryRow(ctx, `
		INSERT INTO components (name, category, specifications, source, quantity, storage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		component.Name, component.Category, component.Specifications,
		component.Source, component.Quantity, component.Storage, component.CreatedAt,
	).Scan(&component.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return fmt.Errorf("validation failed: %s", pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to insert component: %w", err)
	}

	return nil
}

// GetComponent retrieves a component by ID. Inside RunInTransaction the row
// stays locked until the transaction ends.
func (s *queries) GetComponent(ctx context.Context, id int64) (*types.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE id = $1`
	if s.lockRows {
		query += ` FOR UPDATE`
	}

	component, err := scanComponent(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
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
	argIdx := 1

	if query := strings.TrimSpace(filter.Query); query != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR specifications ILIKE $%d OR source ILIKE $%d OR category ILIKE $%d OR storage ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+query+"%")
		argIdx++
	}

	if len(filter.Categories) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("category = ANY($%d)", argIdx))
		args = append(args, filter.Categories)
		argIdx++
	}

	if filter.MinQuantity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("quantity >= $%d", argIdx))
		args = append(args, *filter.MinQuantity)
		argIdx++
	}

	if filter.MaxQuantity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("quantity <= $%d", argIdx))
		args = append(args, *filter.MaxQuantity)
		argIdx++
	}

	if filter.Storage != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("storage ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Storage+"%")
		argIdx++
	}

	if filter.CreatedAfter != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.CreatedAfter.UTC())
		argIdx++
	}

	if filter.CreatedBefore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, filter.CreatedBefore.UTC())
		argIdx++
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

	rows, err := s.q.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

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

	keys, err := storage.ValidateUpdates(updates)
	if err != nil {
		return err
	}

	setClauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	for i, key := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, i+1))
		args = append(args, updates[key])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE components SET %s WHERE id = $%d", strings.Join(setClauses, ", "), len(args))
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update component %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// DeleteComponent removes a component. Exclusion rows that reference it are kept.
func (s *queries) DeleteComponent(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete component %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

func scanComponent(row pgx.Row) (*types.Component, error) {
	var c types.Component
	if err := row.Scan(
		&c.ID, &c.Name, &c.Category, &c.Specifications,
		&c.Source, &c.Quantity, &c.Storage, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/averdin/realmbroker/internal/domain"
)

// ItemStore implements domain.ItemStore using PostgreSQL.
type ItemStore struct {
	pool *pgxpool.Pool
}

// NewItemStore creates a new ItemStore backed by the given connection pool.
func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

const itemCols = `id, name, catalog_id, active, created_at`

// Create inserts a new tracked item and returns it with its assigned ID.
func (s *ItemStore) Create(ctx context.Context, item domain.TrackedItem) (domain.TrackedItem, error) {
	const query = `
		INSERT INTO tracked_items (name, catalog_id, active)
		VALUES ($1, $2, $3)
		RETURNING ` + itemCols

	row := s.pool.QueryRow(ctx, query, item.Name, item.CatalogID, item.Active)
	created, err := scanItem(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.TrackedItem{}, fmt.Errorf("postgres: item %q: %w", item.Name, domain.ErrAlreadyExists)
		}
		return domain.TrackedItem{}, fmt.Errorf("postgres: create item %q: %w", item.Name, err)
	}
	return created, nil
}

// GetByName retrieves a tracked item by its exact name.
func (s *ItemStore) GetByName(ctx context.Context, name string) (domain.TrackedItem, error) {
	const query = `SELECT ` + itemCols + ` FROM tracked_items WHERE name = $1`

	item, err := scanItem(s.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TrackedItem{}, domain.ErrNotFound
		}
		return domain.TrackedItem{}, fmt.Errorf("postgres: get item %q: %w", name, err)
	}
	return item, nil
}

// List returns tracked items ordered by name.
func (s *ItemStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.TrackedItem, error) {
	query := `SELECT ` + itemCols + ` FROM tracked_items ORDER BY name`
	args := []any{}

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListActive returns every item with the active flag set, ordered by name.
func (s *ItemStore) ListActive(ctx context.Context) ([]domain.TrackedItem, error) {
	const query = `SELECT ` + itemCols + ` FROM tracked_items WHERE active ORDER BY name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// SetActive toggles the active flag for one item.
func (s *ItemStore) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tracked_items SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("postgres: set item %d active: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetCatalogID records the resolved catalog identifier on an item.
func (s *ItemStore) SetCatalogID(ctx context.Context, id int64, catalogID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tracked_items SET catalog_id = $2 WHERE id = $1`, id, catalogID)
	if err != nil {
		return fmt.Errorf("postgres: set item %d catalog id: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes one tracked item.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every tracked item.
func (s *ItemStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tracked_items`); err != nil {
		return fmt.Errorf("postgres: delete all items: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row) (domain.TrackedItem, error) {
	var item domain.TrackedItem
	err := row.Scan(&item.ID, &item.Name, &item.CatalogID, &item.Active, &item.CreatedAt)
	return item, err
}

func collectItems(rows pgx.Rows) ([]domain.TrackedItem, error) {
	var items []domain.TrackedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate items: %w", err)
	}
	return items, nil
}

// Compile-time interface check.
var _ domain.ItemStore = (*ItemStore)(nil)

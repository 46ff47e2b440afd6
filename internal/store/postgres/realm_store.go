package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/averdin/realmbroker/internal/domain"
)

// RealmStore implements domain.RealmStore using PostgreSQL.
type RealmStore struct {
	pool *pgxpool.Pool
}

// NewRealmStore creates a new RealmStore backed by the given connection pool.
func NewRealmStore(pool *pgxpool.Pool) *RealmStore {
	return &RealmStore{pool: pool}
}

// Upsert inserts or updates a connected realm keyed by its Blizzard ID.
func (s *RealmStore) Upsert(ctx context.Context, realm domain.ConnectedRealm) error {
	const query = `
		INSERT INTO connected_realms (id, name, slug, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			slug       = EXCLUDED.slug,
			updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, realm.ID, realm.Name, realm.Slug); err != nil {
		return fmt.Errorf("postgres: upsert realm %d: %w", realm.ID, err)
	}
	return nil
}

// ListAll returns every known connected realm ordered by name, which gives
// the scanner a stable sweep order.
func (s *RealmStore) ListAll(ctx context.Context) ([]domain.ConnectedRealm, error) {
	const query = `SELECT id, name, slug FROM connected_realms ORDER BY name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list realms: %w", err)
	}
	defer rows.Close()

	var realms []domain.ConnectedRealm
	for rows.Next() {
		var r domain.ConnectedRealm
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug); err != nil {
			return nil, fmt.Errorf("postgres: scan realm: %w", err)
		}
		realms = append(realms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate realms: %w", err)
	}
	return realms, nil
}

// Count returns the number of known connected realms.
func (s *RealmStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM connected_realms`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count realms: %w", err)
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.RealmStore = (*RealmStore)(nil)

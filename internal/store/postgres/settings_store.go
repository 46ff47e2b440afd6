package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/averdin/realmbroker/internal/domain"
)

// settingsKey is the single row under which the scan settings blob lives.
const settingsKey = "scan"

// SettingsStore implements domain.SettingsStore using PostgreSQL, storing the
// whole settings snapshot as one JSONB value.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a new SettingsStore backed by the given connection
// pool.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Load returns the persisted scan settings. When nothing has been saved yet,
// or the stored value cannot be decoded, it returns the defaults: a broken
// settings row must degrade, not block scans. Missing fields are filled from
// the defaults so partially-written settings stay usable.
func (s *SettingsStore) Load(ctx context.Context) (domain.ScanSettings, error) {
	const query = `SELECT value FROM scan_settings WHERE key = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, settingsKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultScanSettings(), nil
		}
		return domain.ScanSettings{}, fmt.Errorf("postgres: load scan settings: %w", err)
	}

	settings := domain.DefaultScanSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.DefaultScanSettings(), nil
	}
	settings = sanitize(settings)
	return settings, nil
}

// Save persists the scan settings snapshot.
func (s *SettingsStore) Save(ctx context.Context, settings domain.ScanSettings) error {
	raw, err := json.Marshal(sanitize(settings))
	if err != nil {
		return fmt.Errorf("postgres: marshal scan settings: %w", err)
	}

	const query = `
		INSERT INTO scan_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value      = EXCLUDED.value,
			updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, settingsKey, raw); err != nil {
		return fmt.Errorf("postgres: save scan settings: %w", err)
	}
	return nil
}

// sanitize replaces out-of-range values with their defaults so an operator
// typo cannot wedge the scanner.
func sanitize(s domain.ScanSettings) domain.ScanSettings {
	def := domain.DefaultScanSettings()
	if s.Region == "" {
		s.Region = def.Region
	}
	if s.Locale == "" {
		s.Locale = def.Locale
	}
	if s.FeeRate < 0 || s.FeeRate >= 1 {
		s.FeeRate = def.FeeRate
	}
	if s.MinProfit < 0 {
		s.MinProfit = def.MinProfit
	}
	if s.MaxRealms < 0 {
		s.MaxRealms = 0
	}
	return s
}

// Compile-time interface check.
var _ domain.SettingsStore = (*SettingsStore)(nil)

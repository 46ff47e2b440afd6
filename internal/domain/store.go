package domain

import (
	"context"
	"io"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// ItemStore persists the tracked-item catalog.
type ItemStore interface {
	Create(ctx context.Context, item TrackedItem) (TrackedItem, error)
	GetByName(ctx context.Context, name string) (TrackedItem, error)
	List(ctx context.Context, opts ListOpts) ([]TrackedItem, error)
	ListActive(ctx context.Context) ([]TrackedItem, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetCatalogID(ctx context.Context, id int64, catalogID int64) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// RealmStore persists the known connected realms.
type RealmStore interface {
	Upsert(ctx context.Context, realm ConnectedRealm) error
	ListAll(ctx context.Context) ([]ConnectedRealm, error)
	Count(ctx context.Context) (int64, error)
}

// OpportunityStore is the append-only record of arbitrage outcomes.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	ListTop(ctx context.Context, limit int) ([]Opportunity, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsStore persists the operator scan configuration.
type SettingsStore interface {
	Load(ctx context.Context) (ScanSettings, error)
	Save(ctx context.Context, s ScanSettings) error
}

// ItemIDCache memoizes item-name to catalog-identifier lookups across scans.
// Get returns ErrNotFound on a miss.
type ItemIDCache interface {
	Get(ctx context.Context, name string) (int64, error)
	Set(ctx context.Context, name string, catalogID int64) error
}

// ScanLock guards against overlapping scans. Acquire returns ErrLockHeld when
// another scan already holds the lock.
type ScanLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (release func(), err error)
}

// SnapshotWriter stores raw per-realm auction dumps as point-in-time blobs.
type SnapshotWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

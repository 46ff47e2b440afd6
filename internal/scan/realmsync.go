package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/averdin/realmbroker/internal/domain"
)

// RealmDirectory lists connected realms from the upstream game API.
type RealmDirectory interface {
	GetConnectedRealmIndex(ctx context.Context, region string) ([]int64, error)
	GetConnectedRealm(ctx context.Context, region string, id int64) (domain.ConnectedRealm, error)
}

// RealmSyncer refreshes the local connected-realm directory from upstream.
// A realm that fails to resolve is logged and skipped so one bad entry does
// not block the rest of the sweep.
type RealmSyncer struct {
	directory RealmDirectory
	realms    domain.RealmStore
	logger    *slog.Logger
}

// NewRealmSyncer creates a RealmSyncer.
func NewRealmSyncer(directory RealmDirectory, realms domain.RealmStore, logger *slog.Logger) *RealmSyncer {
	return &RealmSyncer{
		directory: directory,
		realms:    realms,
		logger:    logger,
	}
}

// Sync fetches the connected-realm index for the region and upserts each
// realm's name and slug. It returns the number of realms stored.
func (rs *RealmSyncer) Sync(ctx context.Context, region string) (int, error) {
	ids, err := rs.directory.GetConnectedRealmIndex(ctx, region)
	if err != nil {
		return 0, fmt.Errorf("scan: realm index: %w", err)
	}

	stored := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		realm, err := rs.directory.GetConnectedRealm(ctx, region, id)
		if err != nil {
			rs.logger.Warn("scan: realm detail fetch failed",
				slog.Int64("realm_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := rs.realms.Upsert(ctx, realm); err != nil {
			rs.logger.Warn("scan: realm upsert failed",
				slog.Int64("realm_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		stored++
	}

	rs.logger.Info("scan: realm directory synced",
		slog.String("region", region),
		slog.Int("indexed", len(ids)),
		slog.Int("stored", stored),
	)
	return stored, nil
}

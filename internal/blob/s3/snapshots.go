package s3blob

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/averdin/realmbroker/internal/domain"
)

// SnapshotArchiver stores raw per-realm auction dumps as gzipped JSON blobs,
// one object per realm per scan. These are the point-in-time records the
// dashboard and any later analysis read from; the primary database only
// keeps the derived opportunities.
//
// Object layout:
//
//	auctions/2006-01-02/150405/{realm-slug}.json.gz
type SnapshotArchiver struct {
	writer domain.SnapshotWriter
}

// NewSnapshotArchiver creates a SnapshotArchiver that uploads through the
// given writer.
func NewSnapshotArchiver(writer domain.SnapshotWriter) *SnapshotArchiver {
	return &SnapshotArchiver{writer: writer}
}

// snapshotAuction is the serialized listing shape. It matches the domain
// listing rather than the upstream API payload so archived snapshots stay
// readable if the upstream schema shifts.
type snapshotAuction struct {
	ItemID    int64 `json:"item_id"`
	UnitPrice int64 `json:"unit_price,omitempty"`
	Buyout    int64 `json:"buyout,omitempty"`
	Quantity  int64 `json:"quantity"`
}

// ArchiveRealm uploads one realm's listing dump for the scan that started at
// scannedAt.
func (a *SnapshotArchiver) ArchiveRealm(ctx context.Context, scannedAt time.Time, realm domain.ConnectedRealm, auctions []domain.Auction) error {
	records := make([]snapshotAuction, 0, len(auctions))
	for _, auc := range auctions {
		records = append(records, snapshotAuction{
			ItemID:    auc.ItemID,
			UnitPrice: auc.UnitPrice,
			Buyout:    auc.Buyout,
			Quantity:  auc.Quantity,
		})
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(records); err != nil {
		return fmt.Errorf("s3blob: encode snapshot for realm %s: %w", realm.Slug, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("s3blob: compress snapshot for realm %s: %w", realm.Slug, err)
	}

	key := fmt.Sprintf("auctions/%s/%s/%s.json.gz",
		scannedAt.UTC().Format("2006-01-02"),
		scannedAt.UTC().Format("150405"),
		realm.Slug,
	)
	if err := a.writer.Put(ctx, key, &buf, "application/gzip"); err != nil {
		return fmt.Errorf("s3blob: archive realm %s: %w", realm.Slug, err)
	}
	return nil
}

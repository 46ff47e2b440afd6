package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/averdin/realmbroker/internal/domain"
)

// AuctionFetcher retrieves the full listing dump for one connected realm.
type AuctionFetcher interface {
	GetAuctions(ctx context.Context, region string, realmID int64) ([]domain.Auction, error)
}

// ItemSearcher resolves an item name to its catalog identifier via the
// external item catalog. It returns domain.ErrNotFound when no candidate
// matches the name exactly.
type ItemSearcher interface {
	SearchItemID(ctx context.Context, region, locale, name string) (int64, error)
}

// Snapshotter archives one realm's raw listing dump as a point-in-time blob.
type Snapshotter interface {
	ArchiveRealm(ctx context.Context, scannedAt time.Time, realm domain.ConnectedRealm, auctions []domain.Auction) error
}

// Alerter receives scan events for operator notification.
type Alerter interface {
	OpportunityFound(ctx context.Context, opp domain.Opportunity)
	ScanComplete(ctx context.Context, created int, snap domain.ProgressSnapshot)
}

// Scanner drives one end-to-end sweep: realm listing fetches, per-item price
// aggregation, arbitrage selection, and opportunity persistence. A Scanner is
// the sole writer of its ScanProgress; concurrent scans must be excluded at
// the orchestration boundary (see domain.ScanLock).
type Scanner struct {
	fetcher  AuctionFetcher
	searcher ItemSearcher

	items    domain.ItemStore
	realms   domain.RealmStore
	opps     domain.OpportunityStore
	settings domain.SettingsStore
	idCache  domain.ItemIDCache

	progress   *domain.ScanProgress
	snapshots  Snapshotter // optional
	alerter    Alerter     // optional
	onProgress func(domain.ProgressSnapshot)

	logger *slog.Logger
}

// Config bundles the Scanner's dependencies. Snapshots, Alerter, and
// OnProgress may be nil.
type Config struct {
	Fetcher    AuctionFetcher
	Searcher   ItemSearcher
	Items      domain.ItemStore
	Realms     domain.RealmStore
	Opps       domain.OpportunityStore
	Settings   domain.SettingsStore
	IDCache    domain.ItemIDCache
	Progress   *domain.ScanProgress
	Snapshots  Snapshotter
	Alerter    Alerter
	OnProgress func(domain.ProgressSnapshot)
}

// NewScanner creates a Scanner from cfg.
func NewScanner(cfg Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		fetcher:    cfg.Fetcher,
		searcher:   cfg.Searcher,
		items:      cfg.Items,
		realms:     cfg.Realms,
		opps:       cfg.Opps,
		settings:   cfg.Settings,
		idCache:    cfg.IDCache,
		progress:   cfg.Progress,
		snapshots:  cfg.Snapshots,
		alerter:    cfg.Alerter,
		onProgress: cfg.OnProgress,
		logger:     logger.With(slog.String("component", "scanner")),
	}
}

// Progress exposes the scanner's progress record for status readers.
func (s *Scanner) Progress() *domain.ScanProgress { return s.progress }

// Run executes one full sweep and returns the number of opportunities
// persisted. Per-realm fetch faults degrade to an empty listing set and
// per-item resolution faults skip the item; only credential failures and
// store errors outside the realm/item loops abort the scan. The progress
// record's running flag is cleared on every exit path.
func (s *Scanner) Run(ctx context.Context) (created int, err error) {
	settings := s.loadSettings(ctx)

	realms, err := s.realms.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan: list realms: %w", err)
	}
	realms = applyScope(realms, settings)
	if len(realms) == 0 {
		return 0, fmt.Errorf("scan: no realms to scan")
	}

	s.progress.Start(len(realms))
	defer func() {
		s.progress.Finish()
		s.publishProgress()
	}()

	startedAt := time.Now().UTC()
	s.logger.InfoContext(ctx, "scan starting",
		slog.Int("realms", len(realms)),
		slog.String("region", settings.Region),
		slog.Bool("dev_mode", settings.DevMode),
	)

	byRealm := make(map[string][]domain.Auction, len(realms))
	for _, realm := range realms {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("scan: cancelled: %w", err)
		}

		auctions, fetchErr := s.fetcher.GetAuctions(ctx, settings.Region, realm.ID)
		if fetchErr != nil {
			// Without valid credentials no realm can be fetched; abort.
			if errors.Is(fetchErr, domain.ErrUnauthorized) {
				return 0, fmt.Errorf("scan: fetch auctions for %s: %w", realm.Name, fetchErr)
			}
			s.logger.WarnContext(ctx, "realm fetch failed, continuing with no data",
				slog.String("realm", realm.Name),
				slog.String("error", fetchErr.Error()),
			)
			auctions = nil
		}
		byRealm[realm.Name] = auctions

		s.progress.Advance(realm.Name)
		s.publishProgress()

		if s.snapshots != nil && len(auctions) > 0 {
			if archErr := s.snapshots.ArchiveRealm(ctx, startedAt, realm, auctions); archErr != nil {
				s.logger.WarnContext(ctx, "snapshot archive failed",
					slog.String("realm", realm.Name),
					slog.String("error", archErr.Error()),
				)
			}
		}
	}

	items, err := s.items.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan: list tracked items: %w", err)
	}

	skipped := 0
	for _, item := range items {
		catalogID := s.resolveItemID(ctx, settings, item)
		if catalogID == 0 {
			skipped++
			continue
		}

		prices := BuildPriceMap(byRealm, catalogID)
		flip := SelectFlip(prices, settings.EligibleSellRealms, settings.FeeRate, settings.MinProfit)
		if !flip.Profitable() {
			continue
		}

		opp := domain.Opportunity{
			ID:        uuid.NewString(),
			ItemID:    catalogID,
			ItemName:  item.Name,
			BuyRealm:  flip.BuyRealm,
			SellRealm: flip.SellRealm,
			SellPrice: flip.SellPrice / domain.CopperPerGold,
			Profit:    flip.Profit / domain.CopperPerGold,
			CreatedAt: time.Now().UTC(),
		}
		if insErr := s.opps.Insert(ctx, opp); insErr != nil {
			s.logger.ErrorContext(ctx, "persist opportunity failed",
				slog.String("item", item.Name),
				slog.String("error", insErr.Error()),
			)
			continue
		}
		created++

		s.logger.InfoContext(ctx, "opportunity found",
			slog.String("item", item.Name),
			slog.String("buy_realm", opp.BuyRealm),
			slog.String("sell_realm", opp.SellRealm),
			slog.Float64("profit_gold", opp.Profit),
		)
		if s.alerter != nil {
			s.alerter.OpportunityFound(ctx, opp)
		}
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("created", created),
		slog.Int("items_skipped", skipped),
		slog.Duration("elapsed", time.Since(startedAt)),
	)
	if s.alerter != nil {
		s.alerter.ScanComplete(ctx, created, s.progress.Snapshot())
	}
	return created, nil
}

// loadSettings reads the persisted scan settings, falling back to defaults
// when they cannot be loaded. A broken settings row must never block a scan.
func (s *Scanner) loadSettings(ctx context.Context) domain.ScanSettings {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "loading scan settings failed, using defaults",
			slog.String("error", err.Error()),
		)
		return domain.DefaultScanSettings()
	}
	return settings
}

// resolveItemID resolves an item name to its catalog identifier: cache first,
// then the value persisted on the item record, then the external catalog
// search. Successful external lookups are written through to both. A zero
// return means the item cannot be scanned this round.
func (s *Scanner) resolveItemID(ctx context.Context, settings domain.ScanSettings, item domain.TrackedItem) int64 {
	if id, err := s.idCache.Get(ctx, item.Name); err == nil && id != 0 {
		return id
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "item id cache read failed",
			slog.String("item", item.Name),
			slog.String("error", err.Error()),
		)
	}

	if item.CatalogID != 0 {
		if err := s.idCache.Set(ctx, item.Name, item.CatalogID); err != nil {
			s.logger.WarnContext(ctx, "item id cache write failed",
				slog.String("item", item.Name),
				slog.String("error", err.Error()),
			)
		}
		return item.CatalogID
	}

	id, err := s.searcher.SearchItemID(ctx, settings.Region, settings.Locale, item.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "item not found in catalog, skipping",
				slog.String("item", item.Name),
			)
		} else {
			s.logger.WarnContext(ctx, "item search failed, skipping",
				slog.String("item", item.Name),
				slog.String("error", err.Error()),
			)
		}
		return 0
	}

	if err := s.idCache.Set(ctx, item.Name, id); err != nil {
		s.logger.WarnContext(ctx, "item id cache write failed",
			slog.String("item", item.Name),
			slog.String("error", err.Error()),
		)
	}
	if err := s.items.SetCatalogID(ctx, item.ID, id); err != nil {
		s.logger.WarnContext(ctx, "persist catalog id failed",
			slog.String("item", item.Name),
			slog.String("error", err.Error()),
		)
	}
	return id
}

func (s *Scanner) publishProgress() {
	if s.onProgress != nil {
		s.onProgress(s.progress.Snapshot())
	}
}

// applyScope trims the realm list per the scope policy: dev mode caps to a
// small fixed count, otherwise MaxRealms caps when positive, otherwise the
// full list is scanned.
func applyScope(realms []domain.ConnectedRealm, settings domain.ScanSettings) []domain.ConnectedRealm {
	switch {
	case settings.DevMode && len(realms) > domain.DevModeRealmCap:
		return realms[:domain.DevModeRealmCap]
	case settings.MaxRealms > 0 && len(realms) > settings.MaxRealms:
		return realms[:settings.MaxRealms]
	default:
		return realms
	}
}

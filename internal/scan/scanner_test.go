package scan

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/averdin/realmbroker/internal/domain"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetAuctions(ctx context.Context, region string, realmID int64) ([]domain.Auction, error) {
	args := m.Called(ctx, region, realmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Auction), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchItemID(ctx context.Context, region, locale, name string) (int64, error) {
	args := m.Called(ctx, region, locale, name)
	return args.Get(0).(int64), args.Error(1)
}

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) Create(ctx context.Context, item domain.TrackedItem) (domain.TrackedItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) GetByName(ctx context.Context, name string) (domain.TrackedItem, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.TrackedItem, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) ListActive(ctx context.Context) ([]domain.TrackedItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockItemStore) SetCatalogID(ctx context.Context, id int64, catalogID int64) error {
	args := m.Called(ctx, id, catalogID)
	return args.Error(0)
}

func (m *MockItemStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemStore) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRealmStore struct {
	mock.Mock
}

func (m *MockRealmStore) Upsert(ctx context.Context, realm domain.ConnectedRealm) error {
	args := m.Called(ctx, realm)
	return args.Error(0)
}

func (m *MockRealmStore) ListAll(ctx context.Context) ([]domain.ConnectedRealm, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConnectedRealm), args.Error(1)
}

func (m *MockRealmStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockOpportunityStore struct {
	mock.Mock
}

func (m *MockOpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	args := m.Called(ctx, opp)
	return args.Error(0)
}

func (m *MockOpportunityStore) ListTop(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Opportunity), args.Error(1)
}

func (m *MockOpportunityStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Load(ctx context.Context) (domain.ScanSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ScanSettings), args.Error(1)
}

func (m *MockSettingsStore) Save(ctx context.Context, s domain.ScanSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockItemIDCache struct {
	mock.Mock
}

func (m *MockItemIDCache) Get(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemIDCache) Set(ctx context.Context, name string, catalogID int64) error {
	args := m.Called(ctx, name, catalogID)
	return args.Error(0)
}

// scannerFixture bundles the mocks behind one Scanner under test.
type scannerFixture struct {
	fetcher  *MockFetcher
	searcher *MockSearcher
	items    *MockItemStore
	realms   *MockRealmStore
	opps     *MockOpportunityStore
	settings *MockSettingsStore
	idCache  *MockItemIDCache
	progress *domain.ScanProgress
	scanner  *Scanner
}

func newScannerFixture(t *testing.T) *scannerFixture {
	t.Helper()

	f := &scannerFixture{
		fetcher:  new(MockFetcher),
		searcher: new(MockSearcher),
		items:    new(MockItemStore),
		realms:   new(MockRealmStore),
		opps:     new(MockOpportunityStore),
		settings: new(MockSettingsStore),
		idCache:  new(MockItemIDCache),
		progress: &domain.ScanProgress{},
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	f.scanner = NewScanner(Config{
		Fetcher:  f.fetcher,
		Searcher: f.searcher,
		Items:    f.items,
		Realms:   f.realms,
		Opps:     f.opps,
		Settings: f.settings,
		IDCache:  f.idCache,
		Progress: f.progress,
	}, logger)
	return f
}

func testSettings() domain.ScanSettings {
	s := domain.DefaultScanSettings()
	s.EligibleSellRealms = []string{"Stormrage", "Area 52"}
	s.MinProfit = 10
	return s
}

func TestScannerRun(t *testing.T) {
	ctx := context.Background()

	realms := []domain.ConnectedRealm{
		{ID: 1, Name: "Ragnaros", Slug: "ragnaros"},
		{ID: 2, Name: "Stormrage", Slug: "stormrage"},
	}

	t.Run("persists one opportunity per profitable item", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", int64(1)).Return([]domain.Auction{
			{ItemID: 42, UnitPrice: 90 * domain.CopperPerGold, Quantity: 1},
		}, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", int64(2)).Return([]domain.Auction{
			{ItemID: 42, UnitPrice: 150 * domain.CopperPerGold, Quantity: 1},
		}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{
			{ID: 5, Name: "Titanium Ore", CatalogID: 42, Active: true},
		}, nil)
		f.idCache.On("Get", mock.Anything, "Titanium Ore").Return(int64(42), nil)
		f.opps.On("Insert", mock.Anything, mock.MatchedBy(func(opp domain.Opportunity) bool {
			return opp.ItemID == 42 &&
				opp.BuyRealm == "Ragnaros" &&
				opp.SellRealm == "Stormrage" &&
				opp.SellPrice == 150.0 &&
				opp.Profit == 57.0
		})).Return(nil).Once()

		created, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, created)
		f.opps.AssertExpectations(t)

		snap := f.progress.Snapshot()
		assert.False(t, snap.Running)
		assert.Equal(t, 2, snap.TotalRealms)
		assert.Equal(t, 2, snap.ProcessedRealms)
	})

	t.Run("a failing realm degrades to no data and the sweep continues", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", int64(1)).Return(nil, errors.New("upstream 500"))
		f.fetcher.On("GetAuctions", mock.Anything, "us", int64(2)).Return([]domain.Auction{
			{ItemID: 42, UnitPrice: 150 * domain.CopperPerGold, Quantity: 1},
		}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{
			{ID: 5, Name: "Titanium Ore", CatalogID: 42, Active: true},
		}, nil)
		f.idCache.On("Get", mock.Anything, "Titanium Ore").Return(int64(42), nil)

		// Only one realm carries the item, so there is nothing to flip.
		created, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, created)
		f.opps.AssertNotCalled(t, "Insert")

		snap := f.progress.Snapshot()
		assert.False(t, snap.Running)
		assert.Equal(t, 2, snap.ProcessedRealms)
	})

	t.Run("credential failure aborts the sweep", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", int64(1)).Return(nil, domain.ErrUnauthorized)

		_, err := f.scanner.Run(ctx)

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.False(t, f.progress.Running())
		f.items.AssertNotCalled(t, "ListActive")
	})

	t.Run("unresolvable items are skipped", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", mock.Anything).Return([]domain.Auction{}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{
			{ID: 5, Name: "Misspelled Ore", Active: true},
		}, nil)
		f.idCache.On("Get", mock.Anything, "Misspelled Ore").Return(int64(0), domain.ErrNotFound)
		f.searcher.On("SearchItemID", mock.Anything, "us", "en_US", "Misspelled Ore").
			Return(int64(0), domain.ErrNotFound)

		created, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, created)
		f.opps.AssertNotCalled(t, "Insert")
	})

	t.Run("external lookups are written through to cache and store", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", mock.Anything).Return([]domain.Auction{}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{
			{ID: 5, Name: "Titanium Ore", Active: true},
		}, nil)
		f.idCache.On("Get", mock.Anything, "Titanium Ore").Return(int64(0), domain.ErrNotFound)
		f.searcher.On("SearchItemID", mock.Anything, "us", "en_US", "Titanium Ore").
			Return(int64(42), nil)
		f.idCache.On("Set", mock.Anything, "Titanium Ore", int64(42)).Return(nil).Once()
		f.items.On("SetCatalogID", mock.Anything, int64(5), int64(42)).Return(nil).Once()

		_, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		f.idCache.AssertExpectations(t)
		f.items.AssertExpectations(t)
	})

	t.Run("settings load failure falls back to defaults", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(domain.ScanSettings{}, errors.New("row corrupt"))
		f.realms.On("ListAll", mock.Anything).Return(realms, nil)
		// Default region is "us"; the sweep must still run.
		f.fetcher.On("GetAuctions", mock.Anything, "us", mock.Anything).Return([]domain.Auction{}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{}, nil)

		created, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, created)
	})

	t.Run("dev mode caps the sweep", func(t *testing.T) {
		f := newScannerFixture(t)

		many := make([]domain.ConnectedRealm, 0, 15)
		for i := int64(1); i <= 15; i++ {
			many = append(many, domain.ConnectedRealm{ID: i, Name: "Realm"})
		}

		s := testSettings()
		s.DevMode = true
		f.settings.On("Load", mock.Anything).Return(s, nil)
		f.realms.On("ListAll", mock.Anything).Return(many, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", mock.Anything).Return([]domain.Auction{}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{}, nil)

		_, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		f.fetcher.AssertNumberOfCalls(t, "GetAuctions", domain.DevModeRealmCap)
		assert.Equal(t, domain.DevModeRealmCap, f.progress.Snapshot().TotalRealms)
	})

	t.Run("max realms caps the sweep when dev mode is off", func(t *testing.T) {
		f := newScannerFixture(t)

		many := make([]domain.ConnectedRealm, 0, 15)
		for i := int64(1); i <= 15; i++ {
			many = append(many, domain.ConnectedRealm{ID: i, Name: "Realm"})
		}

		s := testSettings()
		s.MaxRealms = 3
		f.settings.On("Load", mock.Anything).Return(s, nil)
		f.realms.On("ListAll", mock.Anything).Return(many, nil)
		f.fetcher.On("GetAuctions", mock.Anything, "us", mock.Anything).Return([]domain.Auction{}, nil)
		f.items.On("ListActive", mock.Anything).Return([]domain.TrackedItem{}, nil)

		_, err := f.scanner.Run(ctx)

		assert.NoError(t, err)
		f.fetcher.AssertNumberOfCalls(t, "GetAuctions", 3)
	})

	t.Run("no realms is an error", func(t *testing.T) {
		f := newScannerFixture(t)

		f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
		f.realms.On("ListAll", mock.Anything).Return([]domain.ConnectedRealm{}, nil)

		_, err := f.scanner.Run(ctx)

		assert.Error(t, err)
	})
}

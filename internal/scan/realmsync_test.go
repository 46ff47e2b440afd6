package scan

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/averdin/realmbroker/internal/domain"
)

type MockRealmDirectory struct {
	mock.Mock
}

func (m *MockRealmDirectory) GetConnectedRealmIndex(ctx context.Context, region string) ([]int64, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRealmDirectory) GetConnectedRealm(ctx context.Context, region string, id int64) (domain.ConnectedRealm, error) {
	args := m.Called(ctx, region, id)
	return args.Get(0).(domain.ConnectedRealm), args.Error(1)
}

func TestRealmSyncer(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("upserts every resolvable realm", func(t *testing.T) {
		dir := new(MockRealmDirectory)
		store := new(MockRealmStore)

		dir.On("GetConnectedRealmIndex", mock.Anything, "us").Return([]int64{1, 2}, nil)
		dir.On("GetConnectedRealm", mock.Anything, "us", int64(1)).
			Return(domain.ConnectedRealm{ID: 1, Name: "Stormrage", Slug: "stormrage"}, nil)
		dir.On("GetConnectedRealm", mock.Anything, "us", int64(2)).
			Return(domain.ConnectedRealm{ID: 2, Name: "Area 52", Slug: "area-52"}, nil)
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()

		syncer := NewRealmSyncer(dir, store, logger)
		stored, err := syncer.Sync(ctx, "us")

		assert.NoError(t, err)
		assert.Equal(t, 2, stored)
		store.AssertExpectations(t)
	})

	t.Run("skips realms that fail to resolve", func(t *testing.T) {
		dir := new(MockRealmDirectory)
		store := new(MockRealmStore)

		dir.On("GetConnectedRealmIndex", mock.Anything, "us").Return([]int64{1, 2}, nil)
		dir.On("GetConnectedRealm", mock.Anything, "us", int64(1)).
			Return(domain.ConnectedRealm{}, errors.New("upstream 500"))
		dir.On("GetConnectedRealm", mock.Anything, "us", int64(2)).
			Return(domain.ConnectedRealm{ID: 2, Name: "Area 52", Slug: "area-52"}, nil)
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

		syncer := NewRealmSyncer(dir, store, logger)
		stored, err := syncer.Sync(ctx, "us")

		assert.NoError(t, err)
		assert.Equal(t, 1, stored)
	})

	t.Run("index failure aborts", func(t *testing.T) {
		dir := new(MockRealmDirectory)
		store := new(MockRealmStore)

		dir.On("GetConnectedRealmIndex", mock.Anything, "us").Return(nil, errors.New("timeout"))

		syncer := NewRealmSyncer(dir, store, logger)
		_, err := syncer.Sync(ctx, "us")

		assert.Error(t, err)
		store.AssertNotCalled(t, "Upsert")
	})
}

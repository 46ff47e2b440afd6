package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/averdin/realmbroker/internal/domain"
)

type MockRealmStore struct {
	mock.Mock
}

func (m *MockRealmStore) Upsert(ctx context.Context, realm domain.ConnectedRealm) error {
	args := m.Called(ctx, realm)
	return args.Error(0)
}

func (m *MockRealmStore) ListAll(ctx context.Context) ([]domain.ConnectedRealm, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ConnectedRealm), args.Error(1)
}

func (m *MockRealmStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestScanHandler(t *testing.T) {
	t.Run("trigger enqueues exactly one sweep request", func(t *testing.T) {
		progress := &domain.ScanProgress{}
		ch := make(chan struct{}, 1)
		h := NewScanHandler(progress, new(MockRealmStore), testLogger()).WithTriggerChannel(ch)

		rec := httptest.NewRecorder()
		h.TriggerScan(rec, httptest.NewRequest(http.MethodPost, "/api/scan/trigger", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, ch, 1)

		// A second trigger before the loop consumes the first is a no-op.
		rec = httptest.NewRecorder()
		h.TriggerScan(rec, httptest.NewRequest(http.MethodPost, "/api/scan/trigger", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, ch, 1)
	})

	t.Run("trigger conflicts while a scan runs", func(t *testing.T) {
		progress := &domain.ScanProgress{}
		progress.Start(5)
		h := NewScanHandler(progress, new(MockRealmStore), testLogger())

		rec := httptest.NewRecorder()
		h.TriggerScan(rec, httptest.NewRequest(http.MethodPost, "/api/scan/trigger", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("status reports progress and the realm count", func(t *testing.T) {
		progress := &domain.ScanProgress{}
		progress.Start(4)
		progress.Advance("Stormrage")

		realms := new(MockRealmStore)
		realms.On("Count", mock.Anything).Return(int64(74), nil)

		h := NewScanHandler(progress, realms, testLogger())
		rec := httptest.NewRecorder()
		h.ScanStatus(rec, httptest.NewRequest(http.MethodGet, "/api/scan/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Progress    domain.ProgressSnapshot `json:"progress"`
			KnownRealms int64                   `json:"known_realms"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Progress.Running)
		assert.Equal(t, 4, resp.Progress.TotalRealms)
		assert.Equal(t, 1, resp.Progress.ProcessedRealms)
		assert.Equal(t, "Stormrage", resp.Progress.CurrentRealm)
		assert.Equal(t, int64(74), resp.KnownRealms)
	})
}

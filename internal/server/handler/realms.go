package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/averdin/realmbroker/internal/domain"
)

// RealmSyncService refreshes the connected-realm directory from upstream.
type RealmSyncService interface {
	Sync(ctx context.Context, region string) (int, error)
}

// RealmHandler serves the connected-realm directory endpoints.
type RealmHandler struct {
	realms   domain.RealmStore
	settings domain.SettingsStore
	syncer   RealmSyncService
	logger   *slog.Logger
}

// NewRealmHandler creates a RealmHandler.
func NewRealmHandler(realms domain.RealmStore, settings domain.SettingsStore, syncer RealmSyncService, logger *slog.Logger) *RealmHandler {
	return &RealmHandler{
		realms:   realms,
		settings: settings,
		syncer:   syncer,
		logger:   logger,
	}
}

// listRealmsResponse wraps the known connected realms.
type listRealmsResponse struct {
	Realms []domain.ConnectedRealm `json:"realms"`
}

// ListRealms returns every known connected realm, ordered by name.
// GET /api/realms
func (h *RealmHandler) ListRealms(w http.ResponseWriter, r *http.Request) {
	realms, err := h.realms.ListAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list realms failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list realms")
		return
	}

	if realms == nil {
		realms = []domain.ConnectedRealm{}
	}
	writeJSON(w, http.StatusOK, listRealmsResponse{Realms: realms})
}

// SyncRealms refreshes the realm directory from upstream for the configured
// region. The sweep over realm details runs within the request; with the
// usual directory size this completes in a few seconds.
// POST /api/realms/sync
func (h *RealmHandler) SyncRealms(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		settings = domain.DefaultScanSettings()
	}

	stored, err := h.syncer.Sync(r.Context(), settings.Region)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: realm sync failed",
			slog.String("region", settings.Region),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "realm sync failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "synced",
		"region": settings.Region,
		"stored": stored,
	})
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/averdin/realmbroker/internal/domain"
)

// SettingsHandler serves the operator scan-configuration endpoints.
type SettingsHandler struct {
	settings domain.SettingsStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings domain.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// GetSettings returns the current scan configuration. Missing or malformed
// stored settings fall back to defaults inside the store.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: load settings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings replaces the scan configuration. Fields outside valid
// ranges are clamped back to defaults before saving.
// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.ScanSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.settings.Save(r.Context(), s); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: save settings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	// Read back so the response reflects any sanitisation applied on save.
	saved, err := h.settings.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

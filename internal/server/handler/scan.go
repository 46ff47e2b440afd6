package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/averdin/realmbroker/internal/domain"
)

// ScanHandler serves scan trigger and status endpoints.
type ScanHandler struct {
	progress  *domain.ScanProgress
	realms    domain.RealmStore
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending requests one sweep
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(progress *domain.ScanProgress, realms domain.RealmStore, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		progress: progress,
		realms:   realms,
		logger:   logger,
	}
}

// WithTriggerChannel sets the channel to send on when a scan is requested.
// The scan loop must receive from this channel to run one sweep.
func (h *ScanHandler) WithTriggerChannel(ch chan<- struct{}) *ScanHandler {
	h.triggerCh = ch
	return h
}

// TriggerScan enqueues one market sweep. If a sweep is already running the
// request is rejected so overlapping scans cannot be queued up.
// POST /api/scan/trigger
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.progress.Running() {
		writeError(w, http.StatusConflict, "a scan is already running")
		return
	}

	h.logger.InfoContext(r.Context(), "handler: scan trigger requested")
	if h.triggerCh != nil {
		select {
		case h.triggerCh <- struct{}{}:
		default:
			// already triggered and not yet consumed
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"message":      "scan enqueued",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// ScanStatus reports the live progress of the current or most recent sweep
// along with the size of the known realm directory.
// GET /api/scan/status
func (h *ScanHandler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.progress.Snapshot()

	realmCount, err := h.realms.Count(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: realm count failed",
			slog.String("error", err.Error()),
		)
		realmCount = -1
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"progress":     snap,
		"known_realms": realmCount,
	})
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/averdin/realmbroker/internal/domain"
)

// OpportunityHandler serves the persisted arbitrage-opportunity endpoints.
type OpportunityHandler struct {
	opps   domain.OpportunityStore
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(opps domain.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{opps: opps, logger: logger}
}

// listOpportunitiesResponse wraps the ranked opportunity list.
type listOpportunitiesResponse struct {
	Opportunities []domain.Opportunity `json:"opportunities"`
}

// ListTop returns persisted opportunities ranked by profit, highest first.
// GET /api/opportunities?limit=20
func (h *OpportunityHandler) ListTop(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	opps, err := h.opps.ListTop(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: opps})
}

// Prune deletes opportunities older than the given number of hours.
// DELETE /api/opportunities?older_than_hours=24
func (h *OpportunityHandler) Prune(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("older_than_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "older_than_hours must be a positive integer")
			return
		}
		hours = n
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	deleted, err := h.opps.DeleteBefore(r.Context(), cutoff)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: prune opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to prune opportunities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "pruned",
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/averdin/realmbroker/internal/domain"
)

// ItemHandler serves the tracked-item catalog endpoints.
type ItemHandler struct {
	items  domain.ItemStore
	logger *slog.Logger
}

// NewItemHandler creates an ItemHandler with the given store and logger.
func NewItemHandler(items domain.ItemStore, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

// listItemsResponse wraps the list of tracked items.
type listItemsResponse struct {
	Items []domain.TrackedItem `json:"items"`
}

// createItemRequest is the body for adding an item to the watchlist.
type createItemRequest struct {
	Name string `json:"name"`
}

// updateItemRequest is the body for toggling an item's active flag.
type updateItemRequest struct {
	Active bool `json:"active"`
}

// ListItems returns the tracked-item watchlist.
// GET /api/items?limit=50&offset=0
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	items, err := h.items.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list items failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	if items == nil {
		items = []domain.TrackedItem{}
	}
	writeJSON(w, http.StatusOK, listItemsResponse{Items: items})
}

// CreateItem adds an item name to the watchlist. The catalog identifier is
// resolved lazily during the next scan.
// POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.items.Create(r.Context(), domain.TrackedItem{Name: name, Active: true})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "item already tracked")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create item failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem toggles whether an item participates in scans.
// PUT /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.items.SetActive(r.Context(), id, req.Active); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update item failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "updated",
		"id":     id,
		"active": req.Active,
	})
}

// DeleteItem removes one item from the watchlist.
// DELETE /api/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete item failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "deleted",
		"id":     id,
	})
}

// DeleteAllItems clears the entire watchlist.
// DELETE /api/items
func (h *ItemHandler) DeleteAllItems(w http.ResponseWriter, r *http.Request) {
	if err := h.items.DeleteAll(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: delete all items failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

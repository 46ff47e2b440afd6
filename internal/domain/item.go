package domain

import "time"

// TrackedItem is an item the operator has opted into scanning. Items are
// deactivated rather than deleted so historical opportunities keep their
// references. CatalogID is zero until the item name has been resolved
// against the game's item catalog.
type TrackedItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CatalogID int64     `json:"catalog_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

package domain

// ConnectedRealm is a cluster of realms sharing one auction house. It is the
// unit the scanner sweeps: prices are local to a connected realm.
type ConnectedRealm struct {
	ID   int64  `json:"id"` // Blizzard connected-realm identifier
	Name string `json:"name"`
	Slug string `json:"slug"`
}

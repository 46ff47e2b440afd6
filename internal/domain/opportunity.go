package domain

import "time"

// RealmPriceMap maps a realm name to the minimum observed per-unit price
// (copper) of one item on that realm. Realms where the item had no valid
// listing this scan are absent, not zero.
type RealmPriceMap map[string]float64

// Flip is the outcome of arbitrage selection for one item in one scan.
// SellRealm is empty when no eligible realm cleared the profit threshold;
// BuyRealm is still reported in that case for diagnostics. Prices and
// profit are in copper; the profit already has the auction-house cut
// applied to the spread.
type Flip struct {
	BuyRealm  string
	SellRealm string
	BuyPrice  float64
	SellPrice float64
	Profit    float64
}

// Profitable reports whether a sell target was selected.
func (f Flip) Profitable() bool { return f.SellRealm != "" }

// Opportunity is a persisted point-in-time arbitrage record: buy the item on
// BuyRealm, sell it on SellRealm. Monetary fields are in gold (copper scaled
// by CopperPerGold). Records are append-only and never mutated.
type Opportunity struct {
	ID        string    `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	BuyRealm  string    `json:"buy_realm"`
	SellRealm string    `json:"sell_realm"`
	SellPrice float64   `json:"sell_price"`
	Profit    float64   `json:"profit"`
	CreatedAt time.Time `json:"created_at"`
}

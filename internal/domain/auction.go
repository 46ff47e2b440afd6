package domain

// CopperPerGold is the fixed divisor used to scale copper amounts to the
// gold values shown to operators and stored on opportunities.
const CopperPerGold = 10000

// Auction is a single auction-house listing on one connected realm. Listings
// are fetched fresh every scan and never persisted individually. Pricing is
// given either as an explicit per-unit price or as a total buyout for the
// whole stack.
type Auction struct {
	ItemID    int64
	UnitPrice int64 // copper per unit, 0 when the listing uses buyout pricing
	Buyout    int64 // copper for the whole stack, 0 when unit-priced
	Quantity  int64
}

// PerUnitPrice derives the price of a single unit in copper. It returns
// false for listings that carry neither a unit price nor a buyout; those
// are excluded from price aggregation.
func (a Auction) PerUnitPrice() (float64, bool) {
	if a.UnitPrice > 0 {
		return float64(a.UnitPrice), true
	}
	if a.Buyout > 0 {
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		return float64(a.Buyout) / float64(qty), true
	}
	return 0, false
}

// Package scan implements the cross-realm price aggregation and arbitrage
// detection sweep: fetch listings per connected realm, reduce them to
// per-realm minimum unit prices for each tracked item, and select the best
// buy/sell realm pair after the auction-house cut.
package scan

import (
	"github.com/averdin/realmbroker/internal/domain"
)

// MinUnitPrice returns the minimum per-unit price in copper among listings of
// itemID with a derivable price. ok is false when no listing matches.
func MinUnitPrice(auctions []domain.Auction, itemID int64) (price float64, ok bool) {
	for _, a := range auctions {
		if a.ItemID != itemID {
			continue
		}
		unit, valid := a.PerUnitPrice()
		if !valid {
			continue
		}
		if !ok || unit < price {
			price = unit
			ok = true
		}
	}
	return price, ok
}

// BuildPriceMap computes the minimum unit price of itemID on every realm that
// has at least one valid listing of it. Realms without the item are omitted
// entirely; the selector treats absence as "not available there this scan".
func BuildPriceMap(byRealm map[string][]domain.Auction, itemID int64) domain.RealmPriceMap {
	prices := make(domain.RealmPriceMap)
	for realm, auctions := range byRealm {
		if p, ok := MinUnitPrice(auctions, itemID); ok {
			prices[realm] = p
		}
	}
	return prices
}

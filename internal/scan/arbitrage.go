package scan

import (
	"sort"

	"github.com/averdin/realmbroker/internal/domain"
)

// SelectFlip chooses the buy/sell realm pair for one item from its per-realm
// minimum prices.
//
// The two legs are deliberately asymmetric: the buy side is the global
// minimum across every realm in prices, while the sell side only considers
// realms in eligibleSell (the realms the operator can actually transact on).
// An empty eligibleSell leaves the sell side unrestricted. The auction-house
// cut is applied once to the spread, and a best profit below minProfit is
// discarded as noise: the result then carries the buy realm only.
//
// Tie-breaks are deterministic: the lexicographically first realm wins on the
// buy side, and the earlier entry of eligibleSell (or lexicographic order
// when unrestricted) wins on the sell side, with a strictly greater profit
// required to displace the current best.
func SelectFlip(prices domain.RealmPriceMap, eligibleSell []string, feeRate, minProfit float64) domain.Flip {
	if len(prices) == 0 {
		return domain.Flip{}
	}

	sorted := make([]string, 0, len(prices))
	for realm := range prices {
		sorted = append(sorted, realm)
	}
	sort.Strings(sorted)

	buyRealm := sorted[0]
	for _, realm := range sorted[1:] {
		if prices[realm] < prices[buyRealm] {
			buyRealm = realm
		}
	}
	buyPrice := prices[buyRealm]

	candidates := eligibleSell
	if len(candidates) == 0 {
		candidates = sorted
	}

	var (
		bestRealm  string
		bestProfit float64
	)
	for _, realm := range candidates {
		sellPrice, listed := prices[realm]
		if !listed {
			continue
		}
		profit := (sellPrice - buyPrice) * (1 - feeRate)
		if profit > bestProfit {
			bestProfit = profit
			bestRealm = realm
		}
	}

	if bestRealm == "" || bestProfit < minProfit {
		return domain.Flip{BuyRealm: buyRealm, BuyPrice: buyPrice}
	}

	return domain.Flip{
		BuyRealm:  buyRealm,
		SellRealm: bestRealm,
		BuyPrice:  buyPrice,
		SellPrice: prices[bestRealm],
		Profit:    bestProfit,
	}
}

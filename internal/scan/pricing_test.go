package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/averdin/realmbroker/internal/domain"
)

func TestMinUnitPrice(t *testing.T) {
	t.Run("picks the cheapest valid listing", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 7, UnitPrice: 500, Quantity: 1},
			{ItemID: 7, UnitPrice: 120, Quantity: 3},
			{ItemID: 7, UnitPrice: 900, Quantity: 1},
		}

		price, ok := MinUnitPrice(auctions, 7)
		assert.True(t, ok)
		assert.Equal(t, 120.0, price)
	})

	t.Run("ignores listings of other items", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 7, UnitPrice: 500, Quantity: 1},
			{ItemID: 8, UnitPrice: 10, Quantity: 1},
		}

		price, ok := MinUnitPrice(auctions, 7)
		assert.True(t, ok)
		assert.Equal(t, 500.0, price)
	})

	t.Run("derives per-unit price from buyout and quantity", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 7, Buyout: 1000, Quantity: 4},
		}

		price, ok := MinUnitPrice(auctions, 7)
		assert.True(t, ok)
		assert.Equal(t, 250.0, price)
	})

	t.Run("unit price wins over buyout when both are set", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 7, UnitPrice: 300, Buyout: 1000, Quantity: 4},
		}

		price, ok := MinUnitPrice(auctions, 7)
		assert.True(t, ok)
		assert.Equal(t, 300.0, price)
	})

	t.Run("skips listings without a derivable price", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 7, Quantity: 2}, // bid-only listing
			{ItemID: 7, UnitPrice: 400, Quantity: 1},
		}

		price, ok := MinUnitPrice(auctions, 7)
		assert.True(t, ok)
		assert.Equal(t, 400.0, price)
	})

	t.Run("reports no price when nothing matches", func(t *testing.T) {
		auctions := []domain.Auction{
			{ItemID: 9, UnitPrice: 400, Quantity: 1},
			{ItemID: 7, Quantity: 1},
		}

		_, ok := MinUnitPrice(auctions, 7)
		assert.False(t, ok)
	})
}

func TestBuildPriceMap(t *testing.T) {
	byRealm := map[string][]domain.Auction{
		"Stormrage": {
			{ItemID: 7, UnitPrice: 100, Quantity: 1},
			{ItemID: 7, UnitPrice: 90, Quantity: 1},
		},
		"Area 52": {
			{ItemID: 7, Buyout: 600, Quantity: 2},
		},
		"Dalaran": {
			{ItemID: 9, UnitPrice: 50, Quantity: 1}, // different item only
		},
		"Ragnaros": {}, // no data this sweep
	}

	prices := BuildPriceMap(byRealm, 7)

	assert.Equal(t, domain.RealmPriceMap{
		"Stormrage": 90.0,
		"Area 52":   300.0,
	}, prices)
	assert.NotContains(t, prices, "Dalaran")
	assert.NotContains(t, prices, "Ragnaros")
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerUnitPrice(t *testing.T) {
	t.Run("commodity unit price wins", func(t *testing.T) {
		a := Auction{ItemID: 7, UnitPrice: 250, Buyout: 9999, Quantity: 3}
		price, ok := a.PerUnitPrice()
		assert.True(t, ok)
		assert.Equal(t, 250.0, price)
	})

	t.Run("buyout is divided by quantity", func(t *testing.T) {
		a := Auction{ItemID: 7, Buyout: 1000, Quantity: 4}
		price, ok := a.PerUnitPrice()
		assert.True(t, ok)
		assert.Equal(t, 250.0, price)
	})

	t.Run("zero quantity is treated as a single unit", func(t *testing.T) {
		a := Auction{ItemID: 7, Buyout: 1000}
		price, ok := a.PerUnitPrice()
		assert.True(t, ok)
		assert.Equal(t, 1000.0, price)
	})

	t.Run("bid-only listing has no derivable price", func(t *testing.T) {
		a := Auction{ItemID: 7, Quantity: 2}
		_, ok := a.PerUnitPrice()
		assert.False(t, ok)
	})
}

package blizzard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averdin/realmbroker/internal/domain"
)

func TestRealmIDFromHref(t *testing.T) {
	cases := []struct {
		href string
		id   int64
		ok   bool
	}{
		{"https://us.api.blizzard.com/data/wow/connected-realm/3684?namespace=dynamic-us", 3684, true},
		{"https://us.api.blizzard.com/data/wow/connected-realm/60", 60, true},
		{"https://us.api.blizzard.com/data/wow/connected-realm/60/", 60, true},
		{"https://us.api.blizzard.com/data/wow/connected-realm/abc", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		id, ok := realmIDFromHref(tc.href)
		assert.Equal(t, tc.ok, ok, tc.href)
		assert.Equal(t, tc.id, id, tc.href)
	}
}

func TestAuctionsDecoding(t *testing.T) {
	payload := `{
		"auctions": [
			{"item": {"id": 36913}, "unit_price": 250000, "quantity": 40},
			{"item": {"id": 49906}, "buyout": 12000000, "quantity": 1},
			{"item": {"id": 49907}, "quantity": 1}
		]
	}`

	var resp auctionsResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Auctions, 3)

	commodity := resp.Auctions[0].toDomain()
	assert.Equal(t, domain.Auction{ItemID: 36913, UnitPrice: 250000, Quantity: 40}, commodity)

	stack := resp.Auctions[1].toDomain()
	assert.Equal(t, int64(12000000), stack.Buyout)
	price, ok := stack.PerUnitPrice()
	assert.True(t, ok)
	assert.Equal(t, 12000000.0, price)

	// Bid-only listings survive decoding but carry no derivable price.
	_, ok = resp.Auctions[2].toDomain().PerUnitPrice()
	assert.False(t, ok)
}

func TestItemSearchDecoding(t *testing.T) {
	payload := `{
		"results": [
			{"data": {"id": 36913, "name": {"en_US": "Titanium Ore", "de_DE": "Titanerz"}}},
			{"data": {"id": 99999, "name": {"en_US": "Titanium Ore Nugget"}}}
		]
	}`

	var resp itemSearchResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Titanium Ore", resp.Results[0].Data.Name["en_US"])
	assert.Equal(t, int64(36913), resp.Results[0].Data.ID)
}

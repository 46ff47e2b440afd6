package blizzard

import "github.com/averdin/realmbroker/internal/domain"

// apiAuction is one listing as returned by the connected-realm auctions
// endpoint. Commodity listings carry unit_price; stack listings carry buyout.
type apiAuction struct {
	Item struct {
		ID int64 `json:"id"`
	} `json:"item"`
	UnitPrice int64 `json:"unit_price"`
	Buyout    int64 `json:"buyout"`
	Quantity  int64 `json:"quantity"`
}

func (a apiAuction) toDomain() domain.Auction {
	return domain.Auction{
		ItemID:    a.Item.ID,
		UnitPrice: a.UnitPrice,
		Buyout:    a.Buyout,
		Quantity:  a.Quantity,
	}
}

type auctionsResponse struct {
	Auctions []apiAuction `json:"auctions"`
}

// itemSearchResponse is the paged item-search payload. Item names come back
// as a locale-keyed map.
type itemSearchResponse struct {
	Results []struct {
		Data struct {
			ID   int64             `json:"id"`
			Name map[string]string `json:"name"`
		} `json:"data"`
	} `json:"results"`
}

type realmIndexResponse struct {
	ConnectedRealms []struct {
		Href string `json:"href"`
	} `json:"connected_realms"`
}

// connectedRealmResponse is the detail payload for one connected realm. The
// cluster is named after its first member realm, matching what players see.
type connectedRealmResponse struct {
	ID     int64 `json:"id"`
	Realms []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"realms"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

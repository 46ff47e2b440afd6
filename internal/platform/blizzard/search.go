package blizzard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/averdin/realmbroker/internal/domain"
)

// searchPageSize bounds the candidate list per item search.
const searchPageSize = 5

// SearchItemID resolves an item name to its catalog identifier via the item
// search endpoint. Candidates are matched by exact case-insensitive localized
// name; domain.ErrNotFound is returned when none match.
func (c *Client) SearchItemID(ctx context.Context, region, locale, name string) (int64, error) {
	params := url.Values{}
	params.Set("namespace", "static-"+region)
	params.Set("locale", locale)
	params.Set("name."+locale, name)
	params.Set("_pageSize", fmt.Sprintf("%d", searchPageSize))

	body, err := c.doGet(ctx, region, "/data/wow/search/item", params)
	if err != nil {
		return 0, err
	}

	var resp itemSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("blizzard: decode item search %q: %w", name, err)
	}

	for _, res := range resp.Results {
		localized := res.Data.Name[locale]
		if localized != "" && strings.EqualFold(localized, name) {
			return res.Data.ID, nil
		}
	}
	return 0, fmt.Errorf("blizzard: item %q: %w", name, domain.ErrNotFound)
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/averdin/realmbroker/internal/domain"
)

// ItemIDCache implements domain.ItemIDCache using plain Redis strings.
// Entries have no TTL: catalog identifiers are stable, and the cache exists
// precisely to survive across scans. Names are lowercased so lookups are
// case-insensitive like the catalog search they memoize.
//
// Key schema:
//
//	itemid:{lowercased item name} - the catalog ID as a decimal string
type ItemIDCache struct {
	rdb *redis.Client
}

// NewItemIDCache creates an ItemIDCache backed by the given Client.
func NewItemIDCache(c *Client) *ItemIDCache {
	return &ItemIDCache{rdb: c.Underlying()}
}

func itemIDKey(name string) string {
	return "itemid:" + strings.ToLower(name)
}

// Get returns the memoized catalog ID for an item name, or
// domain.ErrNotFound on a miss.
func (ic *ItemIDCache) Get(ctx context.Context, name string) (int64, error) {
	id, err := ic.rdb.Get(ctx, itemIDKey(name)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("redis: get item id %q: %w", name, err)
	}
	return id, nil
}

// Set memoizes the catalog ID for an item name.
func (ic *ItemIDCache) Set(ctx context.Context, name string, catalogID int64) error {
	if err := ic.rdb.Set(ctx, itemIDKey(name), catalogID, 0).Err(); err != nil {
		return fmt.Errorf("redis: set item id %q: %w", name, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ItemIDCache = (*ItemIDCache)(nil)

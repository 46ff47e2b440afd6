package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/averdin/realmbroker/internal/domain"
)

// unlockLua deletes the lock key only if its value matches the caller's
// unique token, so one holder cannot release another holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const scanLockKey = "lock:scan"

// ScanLock implements domain.ScanLock using Redis SETNX with a TTL and a
// Lua-based conditional unlock. It is the mutual-exclusion boundary that
// keeps two scans from running against the same progress record, including
// across processes.
type ScanLock struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewScanLock creates a ScanLock backed by the given Client.
func NewScanLock(c *Client) *ScanLock {
	return &ScanLock{
		rdb:      c.Underlying(),
		unlockSc: redis.NewScript(unlockLua),
	}
}

// Acquire attempts to obtain the scan lock with the given TTL. On success it
// returns a release function that is safe to call more than once. It returns
// domain.ErrLockHeld when another scan already holds the lock.
func (sl *ScanLock) Acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	token := uuid.New().String()

	ok, err := sl.rdb.SetNX(ctx, scanLockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire scan lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true

		// Use a background context so release succeeds even if the caller's
		// context is already cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = sl.unlockSc.Run(unlockCtx, sl.rdb, []string{scanLockKey}, token).Err()
	}

	return release, nil
}

// Compile-time interface check.
var _ domain.ScanLock = (*ScanLock)(nil)

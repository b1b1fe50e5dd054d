package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

var (
	blacklistMu     sync.RWMutex
	blacklistClient *redis.Client
)

// SetBlacklistClient configures the Redis client used for access token revocation.
// Passing nil disables the blacklist.
func SetBlacklistClient(c *redis.Client) {
	blacklistMu.Lock()
	blacklistClient = c
	blacklistMu.Unlock()
}

func currentBlacklist() *redis.Client {
	blacklistMu.RLock()
	defer blacklistMu.RUnlock()
	return blacklistClient
}

// BlacklistAccessToken marks token as revoked for ttl, which should cover the token's
// remaining lifetime. No-op without a Redis client.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	c := currentBlacklist()
	if c == nil || ttl <= 0 {
		return nil
	}
	return c.Set(ctx, blacklistPrefix+hashToken(token), "1", ttl).Err()
}

// IsAccessTokenBlacklisted reports whether token was revoked. Without a Redis client
// it returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	c := currentBlacklist()
	if c == nil {
		return false, nil
	}
	n, err := c.Exists(ctx, blacklistPrefix+hashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Package redisrepo implements the refresh-token revocation set on Redis.
package redisrepo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// Blacklist implements session.Blacklist. SET NX gives the required
// compare-and-swap: exactly one caller per JTI observes true. The entry
// lives as long as the token could still pass expiry validation, so
// pruning is handled by Redis itself.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func (b *Blacklist) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	return b.client.SetNX(ctx, keyPrefix+jti, 1, ttl).Result()
}

package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupGuard implements usecase.DedupGuard using Redis.
//
// Seen and Remember are two round trips, not one atomic step. The window
// between them is accepted: two identical requests racing through it both go
// to the ledger, which stays consistent regardless.
type DedupGuard struct {
	client *redis.Client
	prefix string
}

// NewDedupGuard creates a new DedupGuard.
func NewDedupGuard(client *redis.Client) *DedupGuard {
	return &DedupGuard{
		client: client,
		prefix: "tx-dedup:",
	}
}

// Seen reports whether the fingerprint is currently within its suppression
// window.
func (g *DedupGuard) Seen(ctx context.Context, fingerprint string) (bool, error) {
	n, err := g.client.Exists(ctx, g.prefix+fingerprint).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Remember records the fingerprint for the given window.
func (g *DedupGuard) Remember(ctx context.Context, fingerprint string, ttl time.Duration) error {
	return g.client.Set(ctx, g.prefix+fingerprint, "1", ttl).Err()
}

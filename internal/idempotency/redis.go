// Package idempotency guards checkout against replayed requests.
package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "checkout:"
	keyTTL    = 24 * time.Hour
)

// Guard claims request keys in Redis.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuard(client *redis.Client) *Guard {
	return &Guard{client: client, ttl: keyTTL}
}

// Claim reports whether userID/key was free and is now held by the caller.
func (g *Guard) Claim(ctx context.Context, userID, key string) (bool, error) {
	return g.client.SetNX(ctx, redisKey(userID, key), 1, g.ttl).Result()
}

// Release frees a claimed key so the request can be retried.
func (g *Guard) Release(ctx context.Context, userID, key string) error {
	return g.client.Del(ctx, redisKey(userID, key)).Err()
}

func redisKey(userID, key string) string {
	return keyPrefix + userID + ":" + key
}

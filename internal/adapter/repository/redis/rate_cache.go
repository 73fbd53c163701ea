package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultRateTTL bounds how long a cached rate may outlive a change made
// outside this process.
const DefaultRateTTL = 5 * time.Minute

// RateCache implements usecase.RateCache using Redis. Rates are stored per
// exact direction as decimal strings.
type RateCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRateCache creates a new RateCache. A non-positive ttl uses DefaultRateTTL.
func NewRateCache(client *redis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}

	return &RateCache{
		client: client,
		prefix: "rate:",
		ttl:    ttl,
	}
}

func (c *RateCache) key(from, to string) string {
	return c.prefix + from + ":" + to
}

// Get returns the cached rate for from -> to.
func (c *RateCache) Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(from, to)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached rate %s/%s: %w", from, to, err)
	}

	return rate, true, nil
}

// Set caches rate for from -> to.
func (c *RateCache) Set(ctx context.Context, from, to string, rate decimal.Decimal) error {
	return c.client.Set(ctx, c.key(from, to), rate.String(), c.ttl).Err()
}

// Invalidate drops both directions of a pair.
func (c *RateCache) Invalidate(ctx context.Context, from, to string) error {
	return c.client.Del(ctx, c.key(from, to), c.key(to, from)).Err()
}

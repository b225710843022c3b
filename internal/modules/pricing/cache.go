// README: Redis cache for quotes (price verification) and route lookups.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chauffeur/internal/types"
)

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func quoteKey(id string) string {
	return "quotes:" + id
}

// routeKey rounds to 5 decimals (about a metre) so repeated lookups from the
// same resolved address share an entry.
func routeKey(from, to types.Point) string {
	return fmt.Sprintf("routes:%.5f,%.5f:%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
}

func (c *RedisCache) SaveQuote(ctx context.Context, q *Quote, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, quoteKey(q.ID), data, ttl).Err()
}

func (c *RedisCache) GetQuote(ctx context.Context, id string) (*Quote, error) {
	data, err := c.rdb.Get(ctx, quoteKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return &q, nil
}

func (c *RedisCache) GetRoute(ctx context.Context, from, to types.Point) (*Route, error) {
	data, err := c.rdb.Get(ctx, routeKey(from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Route
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *RedisCache) SaveRoute(ctx context.Context, from, to types.Point, r Route, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, routeKey(from, to), data, ttl).Err()
}

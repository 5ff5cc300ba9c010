package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// CachedResolver caches successful resolutions in Redis. Cache failures are
// logged and fall through to the upstream resolver.
type CachedResolver struct {
	upstream Resolver
	client   *redis.Client
	ttl      time.Duration
	log      *slog.Logger
}

// NewCachedResolver wraps upstream with a Redis cache.
func NewCachedResolver(upstream Resolver, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachedResolver {
	if log == nil {
		log = slog.Default()
	}

	return &CachedResolver{
		upstream: upstream,
		client:   client,
		ttl:      ttl,
		log:      log,
	}
}

// Resolve returns the cached point for the normalized query, or consults
// the upstream resolver and caches its answer. Not-found results are not
// cached; an address may start resolving later.
func (c *CachedResolver) Resolve(ctx context.Context, query string) (domain.Point, error) {
	key := cacheKey(query)

	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var point domain.Point
			if jsonErr := json.Unmarshal(data, &point); jsonErr == nil {
				return point, nil
			}
			c.log.Warn("failed to decode cached geocode entry", "key", key)
		case !errors.Is(err, redis.Nil):
			c.log.Warn("geocode cache read failed", "key", key, "error", err)
		}
	}

	point, err := c.upstream.Resolve(ctx, query)
	if err != nil {
		return domain.Point{}, err
	}

	if c.client != nil {
		payload, jsonErr := json.Marshal(point)
		if jsonErr == nil {
			if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
				c.log.Warn("geocode cache write failed", "key", key, "error", setErr)
			}
		}
	}

	return point, nil
}

func cacheKey(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("geocode:%s", normalized)
}

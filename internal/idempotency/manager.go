// Package idempotency deduplicates Telegram update deliveries. Webhook
// deliveries may be retried by Telegram; an update must be processed once.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// Manager records which update ids have already been handled.
type Manager interface {
	// Seen atomically marks the key as handled and reports whether it had
	// been handled before.
	Seen(ctx context.Context, key string) (bool, error)
}

type redisManager struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisManager constructs a Redis-backed Manager. A non-positive ttl
// falls back to 24 hours, comfortably beyond Telegram's retry horizon.
func NewRedisManager(client *redis.Client, ttl time.Duration, log *slog.Logger) Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = slog.Default()
	}

	return &redisManager{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Seen uses SETNX so that exactly one delivery of a given update wins.
func (m *redisManager) Seen(ctx context.Context, key string) (bool, error) {
	acquired, err := m.client.SetNX(ctx, recordKey(key), 1, m.ttl).Result()
	if err != nil {
		m.log.Error("failed to record update id", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return !acquired, nil
}

func recordKey(key string) string {
	return fmt.Sprintf("update:%s", key)
}

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter   ratelimit.Limiter
	limit     int
	window    time.Duration
	whitelist map[int64]struct{}
	log       *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
// Whitelisted user ids bypass the limiter entirely.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, whitelist []int64, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	allowed := make(map[int64]struct{}, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = struct{}{}
	}

	return &RateLimitMiddleware{
		limiter:   limiter,
		limit:     limit,
		window:    window,
		whitelist: allowed,
		log:       log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.limit <= 0 || m.window <= 0 {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if _, ok := m.whitelist[userID]; ok {
			return next(c)
		}

		key := fmt.Sprintf("user:%d", userID)
		result, err := m.limiter.Check(context.Background(), key, m.limit, m.window)
		if err != nil && result == nil {
			if m.log != nil {
				m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			return next(c)
		}

		if result != nil && !result.Allowed {
			if m.log != nil {
				m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
			}
			return c.Send("You're sending updates too fast. Try again in a moment.")
		}

		return next(c)
	}
}

package middleware

import (
	"context"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
	"github.com/ollxel/geotimer-bot/internal/idempotency"
)

// Idempotency ensures handlers execute at most once per Telegram update.
// The key is the update id, not the message id: live location edits reuse the
// original message id and must not be swallowed as duplicates.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := extractIdempotencyKey(c)
			if key == "" {
				return next(c)
			}

			seen, err := manager.Seen(context.Background(), key)
			if err != nil {
				// Dedup is best effort. A broken Redis must not drop updates.
				log.Warn("idempotency check failed; handling anyway", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}

			if seen {
				log.Info("duplicate update skipped", slog.String("key", key))
				return nil
			}

			return next(c)
		}
	}
}

func extractIdempotencyKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	update := c.Update()
	if update.ID == 0 {
		return ""
	}

	return strconv.Itoa(update.ID)
}

package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/session"
)

// NewCancelHandler abandons the authoring conversation, discarding any
// partial zone data.
func NewCancelHandler(sessions session.Manager, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("cancel handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		if err := sessions.Clear(ctx, userID); err != nil {
			log.Error("failed to clear authoring session", slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}

		return c.Send("Okay, I threw that away. Nothing was saved.")
	}
}

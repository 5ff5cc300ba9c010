package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/keyboard"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/repository"
	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/ollxel/geotimer-bot/internal/usercache"
)

// NewEraseHandler asks for confirmation before deleting the account.
func NewEraseHandler(kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("erase handler invoked without sender")
			return nil
		}

		return c.Send(
			"This deletes your account and every zone you've created. There's no undo.",
			kb.EraseConfirm(),
		)
	}
}

// HandleEraseConfirm deletes the user row, which cascades to their zones,
// and drops any authoring session and cached profile.
func HandleEraseConfirm(users repository.UserRepository, cache *usercache.Cache, sessions session.Manager, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		if err := users.Delete(ctx, userID); err != nil {
			log.Error("failed to erase user", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		if err := sessions.Clear(ctx, userID); err != nil {
			log.Warn("failed to clear session during erase", slog.Int64("user_id", userID), slog.Any("error", err))
		}

		if err := cache.Invalidate(ctx, userID); err != nil {
			log.Warn("failed to invalidate cached profile", slog.Int64("user_id", userID), slog.Any("error", err))
		}

		if respErr := c.Respond(&telebot.CallbackResponse{Text: "Erased."}); respErr != nil {
			return respErr
		}

		return c.Send("All your data is gone. Send /start if you ever want to come back.")
	}
}

// HandleEraseCancel backs out of the erase flow.
func HandleEraseCancel(log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		if respErr := c.Respond(&telebot.CallbackResponse{Text: "Cancelled."}); respErr != nil {
			return respErr
		}

		return c.Send("Nothing was deleted.")
	}
}

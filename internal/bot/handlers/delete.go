package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/keyboard"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/repository"
)

// NewDeleteHandler offers the user's zones as inline buttons for removal.
func NewDeleteHandler(triggers repository.TriggerRepository, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("delete handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		owned, err := triggers.ListByOwner(ctx, userID)
		if err != nil {
			log.Error("failed to list triggers for deletion", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		if len(owned) == 0 {
			return c.Send("You have no zones to remove.")
		}

		return c.Send("Which zone should I remove?", kb.DeleteMenu(owned))
	}
}

// HandleDeleteTrigger processes the inline button picked from the delete menu.
// The store scopes deletion by owner, so a forged or stale callback for
// someone else's zone simply reports nothing to delete.
func HandleDeleteTrigger(triggers repository.TriggerRepository, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Callback() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID
		data := strings.TrimSpace(c.Callback().Data)

		raw := strings.TrimPrefix(data, keyboard.DeleteTriggerPrefix)
		triggerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn("malformed delete callback", slog.Int64("user_id", userID), slog.String("data", data))
			return c.Respond(&telebot.CallbackResponse{Text: "That button has expired."})
		}

		deleted, err := triggers.Delete(ctx, userID, triggerID)
		if err != nil {
			log.Error("failed to delete trigger",
				slog.Int64("user_id", userID), slog.Int64("trigger_id", triggerID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		if !deleted {
			if respErr := c.Respond(&telebot.CallbackResponse{Text: "That zone is already gone."}); respErr != nil {
				return respErr
			}
			return c.Send("That zone doesn't exist anymore.")
		}

		if respErr := c.Respond(&telebot.CallbackResponse{Text: "Removed."}); respErr != nil {
			return respErr
		}

		return c.Send("Zone removed. I won't watch it anymore.")
	}
}

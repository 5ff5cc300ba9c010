package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/domain"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/repository"
)

// NewListHandler shows the user's zones with their current states.
func NewListHandler(triggers repository.TriggerRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("list handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		owned, err := triggers.ListByOwner(ctx, userID)
		if err != nil {
			log.Error("failed to list triggers", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		if len(owned) == 0 {
			return c.Send("You have no zones yet. Use /add to create one.")
		}

		var sb strings.Builder
		sb.WriteString("Your zones:\n")
		for _, t := range owned {
			sb.WriteString(formatTrigger(t))
			sb.WriteByte('\n')
		}

		return c.Send(sb.String())
	}
}

func formatTrigger(t domain.Trigger) string {
	state := "outside"
	if t.LastState == domain.StateInside {
		state = "inside"
	}

	return fmt.Sprintf("• %s — %dm radius at (%.5f, %.5f), you're %s",
		t.Name, t.RadiusMeters, t.Center.Lat, t.Center.Lon, state)
}

package handlers

import (
	"context"
	stdErrors "errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/geocode"
	"github.com/ollxel/geotimer-bot/internal/repository"
	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/ollxel/geotimer-bot/pkg/metrics"
)

// NewAddHandler starts a zone authoring conversation. Any conversation
// already in progress is replaced; partial data is discarded.
func NewAddHandler(sessions session.Manager, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("add handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		if _, err := sessions.Begin(ctx, userID); err != nil {
			if stdErrors.Is(err, session.ErrSessionLocked) {
				return c.Send("I'm still processing your previous message. Try again in a second.")
			}
			log.Error("failed to begin authoring session", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		return c.Send(session.PromptName)
	}
}

// NewNameStepHandler consumes the text message naming the zone.
func NewNameStepHandler(sessions session.Manager, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		sess, err := sessions.Get(ctx, userID)
		if err != nil {
			return errors.NewDatabaseError(err)
		}

		result := session.ApplyNameInput(sess, c.Text())
		if result.Advanced {
			if err := sessions.Save(ctx, sess); err != nil {
				log.Error("failed to save session after name step", slog.Int64("user_id", userID), slog.Any("error", err))
				return errors.NewDatabaseError(err)
			}
		}

		return c.Send(result.Reply)
	}
}

// NewLocationStepHandler consumes a text address while the session awaits a
// location. The address is resolved to coordinates; a shared location pin is
// handled by the location handler instead.
func NewLocationStepHandler(sessions session.Manager, resolver geocode.Resolver, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		sess, err := sessions.Get(ctx, userID)
		if err != nil {
			return errors.NewDatabaseError(err)
		}

		point, err := resolver.Resolve(ctx, c.Text())
		if err != nil {
			if stdErrors.Is(err, geocode.ErrNotFound) {
				metrics.RecordGeocodeRequest("not_found")
				return c.Send(session.AddressNotFoundReply().Reply)
			}

			metrics.RecordGeocodeRequest("error")
			log.Error("address resolution failed", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewExternalAPIError("geocoder", err)
		}
		metrics.RecordGeocodeRequest("ok")

		result := session.ApplyLocationInput(sess, point)
		if err := sessions.Save(ctx, sess); err != nil {
			log.Error("failed to save session after location step", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		return c.Send(result.Reply)
	}
}

// NewRadiusStepHandler consumes the radius message, persists the finished
// trigger, and ends the conversation.
func NewRadiusStepHandler(sessions session.Manager, triggers repository.TriggerRepository, maxRadiusMeters int, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		sess, err := sessions.Get(ctx, userID)
		if err != nil {
			return errors.NewDatabaseError(err)
		}

		result := session.ApplyRadiusInput(sess, c.Text(), maxRadiusMeters)
		if !result.Completed {
			return c.Send(result.Reply)
		}

		if _, err := triggers.Add(ctx, result.Trigger); err != nil {
			log.Error("failed to persist trigger", slog.Int64("user_id", userID), slog.Any("error", err))
			return errors.NewDatabaseError(err)
		}

		// The trigger is durable; losing the session cleanup only means the
		// user gets re-prompted and can /cancel.
		if err := sessions.Clear(ctx, userID); err != nil {
			log.Error("failed to clear session after completion", slog.Int64("user_id", userID), slog.Any("error", err))
		}

		return c.Send(result.Reply)
	}
}

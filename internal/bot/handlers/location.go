package handlers

import (
	"context"
	stdErrors "errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/domain"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/geofence"
	"github.com/ollxel/geotimer-bot/internal/notify"
	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/ollxel/geotimer-bot/pkg/metrics"
)

// NewLocationHandler consumes shared locations. A continuous sample — part of
// a live location stream — is evaluated against the user's zones. A one-off
// pin feeds the authoring conversation when one is waiting for a location,
// and is otherwise answered with a hint.
//
// A sample is continuous when the sender enabled live sharing (LivePeriod set)
// or when it arrived as an edit: Telegram delivers live updates by editing
// the original location message.
func NewLocationHandler(
	sessions session.Manager,
	evaluator *geofence.Evaluator,
	notifier *notify.Dispatcher,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("location handler invoked without sender")
			return nil
		}

		msg := c.Message()
		if msg == nil || msg.Location == nil {
			return nil
		}

		userID := c.Sender().ID
		point := domain.Point{
			Lat: float64(msg.Location.Lat),
			Lon: float64(msg.Location.Lng),
		}

		if !point.Valid() {
			log.Warn("discarding malformed location sample",
				slog.Int64("user_id", userID),
				slog.Float64("lat", point.Lat),
				slog.Float64("lon", point.Lon),
			)
			return nil
		}

		continuous := msg.Location.LivePeriod > 0 || c.Update().EditedMessage != nil
		if continuous {
			return evaluateSample(userID, point, evaluator, notifier, log)
		}

		return handleSinglePin(c, userID, point, sessions, log)
	}
}

func evaluateSample(
	userID int64,
	point domain.Point,
	evaluator *geofence.Evaluator,
	notifier *notify.Dispatcher,
	log *slog.Logger,
) error {
	ctx := context.Background()
	sample := domain.LocationSample{
		OwnerID:    userID,
		Point:      point,
		Continuous: true,
	}

	events, err := evaluator.Evaluate(ctx, userID, sample)
	if err != nil {
		log.Error("failed to evaluate location sample", slog.Int64("user_id", userID), slog.Any("error", err))
		return errors.NewDatabaseError(err)
	}

	for _, event := range events {
		metrics.RecordZoneTransition(string(event.Direction))
	}

	notifier.Dispatch(userID, events)

	return nil
}

func handleSinglePin(
	c telebot.Context,
	userID int64,
	point domain.Point,
	sessions session.Manager,
	log *slog.Logger,
) error {
	ctx := context.Background()

	sess, err := sessions.Get(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, session.ErrSessionNotFound) {
			return c.Send("To be watched, share a live location. A one-off pin only works while creating a zone with /add.")
		}
		return errors.NewDatabaseError(err)
	}

	if sess.Step != session.StepAwaitingLocation {
		return c.Send("I'm not expecting a location right now. Answer the question above, or /cancel.")
	}

	result := session.ApplyLocationInput(sess, point)
	if err := sessions.Save(ctx, sess); err != nil {
		log.Error("failed to save session after location pin", slog.Int64("user_id", userID), slog.Any("error", err))
		return errors.NewDatabaseError(err)
	}

	return c.Send(result.Reply)
}

// Package notify maps transition events to outbound user messages.
package notify

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// Sender delivers a text message to a user. Delivery is fire-and-forget:
// the dispatcher never retries and never unwinds state already persisted.
type Sender interface {
	Send(userID int64, text string) error
}

// Dispatcher turns transition events into notifications. It is stateless.
type Dispatcher struct {
	sender Sender
	log    *slog.Logger
}

// NewDispatcher constructs a Dispatcher over the given sender.
func NewDispatcher(sender Sender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		sender: sender,
		log:    log,
	}
}

// Dispatch sends one message per event. A failed send is logged and does
// not affect the remaining events.
func (d *Dispatcher) Dispatch(ownerID int64, events []domain.TransitionEvent) {
	for _, event := range events {
		if err := d.sender.Send(ownerID, Message(event)); err != nil {
			d.log.Error("failed to deliver transition notification",
				slog.Int64("user_id", ownerID),
				slog.Int64("trigger_id", event.TriggerID),
				slog.String("direction", string(event.Direction)),
				slog.Any("error", err),
			)
		}
	}
}

// Message renders the user-facing text for one transition event.
func Message(event domain.TransitionEvent) string {
	switch event.Direction {
	case domain.DirectionEntered:
		return fmt.Sprintf("📍 You entered the zone %q", event.TriggerName)
	case domain.DirectionExited:
		return fmt.Sprintf("🚶 You left the zone %q", event.TriggerName)
	default:
		return fmt.Sprintf("Zone %q changed state", event.TriggerName)
	}
}

// TelebotSender adapts a telebot.Bot to the Sender interface.
type TelebotSender struct {
	bot *telebot.Bot
}

// NewTelebotSender wraps the given bot.
func NewTelebotSender(bot *telebot.Bot) *TelebotSender {
	return &TelebotSender{bot: bot}
}

// Send delivers text to the Telegram user with the given id.
func (s *TelebotSender) Send(userID int64, text string) error {
	_, err := s.bot.Send(&telebot.User{ID: userID}, text)
	return err
}

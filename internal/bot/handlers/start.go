package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

const welcomeText = `Hi! I watch your location and tell you when you enter or leave zones you define.

/add — create a zone (I'll ask for a name, a place, and a radius)
/list — show your zones
/delete — remove one zone
/cancel — abandon the zone you're creating
/erase — delete your account and every zone

Share a live location and I'll start watching.`

// NewStartHandler greets the user and explains the available commands.
// User registration happens in middleware before this runs.
func NewStartHandler(log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("start handler invoked without sender")
			return nil
		}

		return c.Send(welcomeText)
	}
}

package keyboard

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// Callback data prefixes understood by the router.
const (
	DeleteTriggerPrefix = "trigger_delete_"
	EraseConfirmData    = "erase_confirm"
	EraseCancelData     = "erase_cancel"
)

// Builder creates inline keyboards for trigger management flows.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// DeleteMenu builds one row per trigger so the user can pick which zone to remove.
func (b *Builder) DeleteMenu(triggers []domain.Trigger) *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(triggers))
	for _, t := range triggers {
		rows = append(rows, []telebot.InlineButton{
			{
				Text: fmt.Sprintf("%s (%dm)", t.Name, t.RadiusMeters),
				Data: fmt.Sprintf("%s%d", DeleteTriggerPrefix, t.ID),
			},
		})
	}

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = rows
	return markup
}

// EraseConfirm builds the confirmation buttons for full account erasure.
func (b *Builder) EraseConfirm() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "Erase everything ✅",
				Data: EraseConfirmData,
			},
			{
				Text: "Keep my data ❌",
				Data: EraseCancelData,
			},
		},
	}
	return markup
}

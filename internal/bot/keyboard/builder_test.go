package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

func TestBuilder_DeleteMenu(t *testing.T) {
	b := NewBuilder(nil)

	triggers := []domain.Trigger{
		{ID: 7, Name: "Home", RadiusMeters: 150},
		{ID: 12, Name: "Office", RadiusMeters: 50},
	}

	markup := b.DeleteMenu(triggers)
	require.Len(t, markup.InlineKeyboard, 2)

	assert.Equal(t, "Home (150m)", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "trigger_delete_7", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "Office (50m)", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "trigger_delete_12", markup.InlineKeyboard[1][0].Data)
}

func TestBuilder_DeleteMenu_Empty(t *testing.T) {
	b := NewBuilder(nil)

	markup := b.DeleteMenu(nil)
	assert.Empty(t, markup.InlineKeyboard)
}

func TestBuilder_EraseConfirm(t *testing.T) {
	b := NewBuilder(nil)

	markup := b.EraseConfirm()
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)

	assert.Equal(t, EraseConfirmData, markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, EraseCancelData, markup.InlineKeyboard[0][1].Data)
}

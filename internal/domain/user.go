package domain

import "time"

// User represents a Telegram user known to the bot.
// The ID is the Telegram user identifier; there is no separate surrogate key.
type User struct {
	ID        int64
	FirstName string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

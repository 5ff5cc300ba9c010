package session

import (
	"time"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// Step represents a position in the trigger authoring conversation.
type Step string

const (
	// StepAwaitingName means the bot asked for the zone's display name.
	StepAwaitingName Step = "awaiting_name"
	// StepAwaitingLocation means the bot asked for the zone's center, either
	// as a shared location or a free-text address.
	StepAwaitingLocation Step = "awaiting_location"
	// StepAwaitingRadius means the bot asked for the zone radius in meters.
	StepAwaitingRadius Step = "awaiting_radius"
)

// Session holds the partially built trigger for one user's authoring
// conversation. Exactly one session exists per user at a time.
type Session struct {
	UserID    int64        `json:"user_id"`
	Step      Step         `json:"step"`
	Name      string       `json:"name,omitempty"`
	Center    domain.Point `json:"center,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Draft assembles the accumulated fields into a trigger ready to persist.
// Valid only once the radius step has accepted a value.
func (s *Session) Draft(radiusMeters int) *domain.Trigger {
	return &domain.Trigger{
		OwnerID:      s.UserID,
		Name:         s.Name,
		Center:       s.Center,
		RadiusMeters: radiusMeters,
		LastState:    domain.StateOutside,
	}
}

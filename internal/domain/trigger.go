package domain

import "time"

// TriggerState is the last observed side of a geofence boundary.
type TriggerState string

const (
	// StateInside means the owner's last evaluated sample was within the zone.
	StateInside TriggerState = "inside"
	// StateOutside means the owner's last evaluated sample was beyond the zone.
	StateOutside TriggerState = "outside"
)

// Trigger is a circular geofence owned by a single user.
type Trigger struct {
	ID           int64
	OwnerID      int64
	Name         string
	Center       Point
	RadiusMeters int
	LastState    TriggerState
	CreatedAt    time.Time
}

// TriggerEvaluation is a store verdict for one trigger against one point:
// the persisted last state plus the freshly computed containment result.
type TriggerEvaluation struct {
	ID           int64
	Name         string
	RadiusMeters int
	LastState    TriggerState
	Inside       bool
}

// Direction distinguishes the two kinds of boundary crossings.
type Direction string

const (
	DirectionEntered Direction = "entered"
	DirectionExited  Direction = "exited"
)

// TransitionEvent records a single detected boundary crossing.
type TransitionEvent struct {
	TriggerID   int64
	TriggerName string
	Direction   Direction
}

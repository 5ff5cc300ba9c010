package session

// validTransitions contains the permitted forward moves in the authoring
// conversation. Clearing a session is always allowed and not modeled here.
var validTransitions = map[Step][]Step{
	StepAwaitingName: {
		StepAwaitingLocation,
	},
	StepAwaitingLocation: {
		StepAwaitingRadius,
	},
}

// IsTransitionAllowed reports whether moving from one step to another is
// valid. Restarting at the name step is always permitted: a fresh add intent
// discards whatever was accumulated.
func IsTransitionAllowed(from, to Step) bool {
	if to == StepAwaitingName {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, step := range allowed {
		if step == to {
			return true
		}
	}

	return false
}

package session

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    Step
		to      Step
		allowed bool
	}{
		{"name to location", StepAwaitingName, StepAwaitingLocation, true},
		{"location to radius", StepAwaitingLocation, StepAwaitingRadius, true},
		{"name skips to radius", StepAwaitingName, StepAwaitingRadius, false},
		{"radius back to location", StepAwaitingRadius, StepAwaitingLocation, false},
		{"restart from location", StepAwaitingLocation, StepAwaitingName, true},
		{"restart from radius", StepAwaitingRadius, StepAwaitingName, true},
		{"unknown step", Step("bogus"), StepAwaitingLocation, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// Conversation prompts. Each Apply function picks the one matching its outcome.
const (
	PromptName     = "What should I call this zone?"
	PromptLocation = "Where is it? Share a location or type an address."
	PromptRadius   = "How large is the zone? Send the radius in meters."

	replyEmptyName       = "The name can't be empty. " + PromptName
	replyAddressNotFound = "I couldn't find that address. Try a different one, or share a location."
	replyBadRadius       = "That's not a radius I can use. Send a whole number of meters, e.g. 150."
)

// StepResult captures the outcome of feeding one input into a session.
type StepResult struct {
	// Reply is the message to send back to the user.
	Reply string
	// Advanced reports whether the session moved to the next step. When
	// false the session is unchanged and the reply is a re-prompt.
	Advanced bool
	// Completed reports that the conversation finished and Trigger holds
	// the draft to persist. The session should be cleared after commit.
	Completed bool
	// Trigger is the assembled draft, set only when Completed.
	Trigger *domain.Trigger
}

// ApplyNameInput feeds a text message into a session awaiting a name.
// Any non-empty text becomes the candidate name.
func ApplyNameInput(sess *Session, text string) StepResult {
	name := strings.TrimSpace(text)
	if name == "" {
		return StepResult{Reply: replyEmptyName}
	}

	sess.Name = name
	sess.Step = StepAwaitingLocation

	return StepResult{
		Reply:    fmt.Sprintf("Got it, %q. %s", name, PromptLocation),
		Advanced: true,
	}
}

// ApplyLocationInput feeds resolved coordinates into a session awaiting a
// location. The caller validates the point and resolves addresses first; an
// unresolved address never reaches this function.
func ApplyLocationInput(sess *Session, point domain.Point) StepResult {
	sess.Center = point
	sess.Step = StepAwaitingRadius

	return StepResult{
		Reply:    PromptRadius,
		Advanced: true,
	}
}

// AddressNotFoundReply is the re-prompt for an address the resolver could
// not turn into coordinates. The session does not advance.
func AddressNotFoundReply() StepResult {
	return StepResult{Reply: replyAddressNotFound}
}

// ApplyRadiusInput feeds a text message into a session awaiting a radius.
// The text must parse as a positive integer no larger than maxRadiusMeters;
// anything else re-prompts without advancing.
func ApplyRadiusInput(sess *Session, text string, maxRadiusMeters int) StepResult {
	radius, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || radius <= 0 {
		return StepResult{Reply: replyBadRadius}
	}

	if radius > maxRadiusMeters {
		return StepResult{
			Reply: fmt.Sprintf("That's too large. The radius can be at most %d meters.", maxRadiusMeters),
		}
	}

	return StepResult{
		Reply:     fmt.Sprintf("Done! I'll watch the zone %q (%dm radius) for you.", sess.Name, radius),
		Advanced:  true,
		Completed: true,
		Trigger:   sess.Draft(radius),
	}
}

// Package geofence detects boundary crossings between location samples and
// a user's trigger set.
package geofence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ollxel/geotimer-bot/internal/domain"
	"github.com/ollxel/geotimer-bot/internal/repository"
)

// Evaluator compares a location sample against the owner's persisted
// trigger states and advances each trigger at most once per sample.
type Evaluator struct {
	triggers repository.TriggerRepository
	log      *slog.Logger
}

// NewEvaluator constructs an Evaluator over the given trigger store.
func NewEvaluator(triggers repository.TriggerRepository, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}

	return &Evaluator{
		triggers: triggers,
		log:      log,
	}
}

// Evaluate loads the owner's triggers with their containment verdicts for
// the sample point, diffs each verdict against the persisted last state,
// writes the new state for every crossing, and returns the transitions
// whose state write succeeded. State is persisted before anyone is
// notified, so a failed write yields a skipped notification rather than a
// duplicate one. A write failure on one trigger never affects the others.
func (e *Evaluator) Evaluate(ctx context.Context, ownerID int64, sample domain.LocationSample) ([]domain.TransitionEvent, error) {
	evaluations, err := e.triggers.EvaluateForOwner(ctx, ownerID, sample.Point)
	if err != nil {
		return nil, fmt.Errorf("evaluate triggers for owner %d: %w", ownerID, err)
	}

	var events []domain.TransitionEvent
	for _, ev := range evaluations {
		newState, direction, crossed := transition(ev)
		if !crossed {
			continue
		}

		if err := e.triggers.SetState(ctx, ownerID, ev.ID, newState); err != nil {
			e.log.Error("failed to persist trigger state; transition dropped",
				slog.Int64("owner_id", ownerID),
				slog.Int64("trigger_id", ev.ID),
				slog.String("new_state", string(newState)),
				slog.Any("error", err),
			)
			continue
		}

		events = append(events, domain.TransitionEvent{
			TriggerID:   ev.ID,
			TriggerName: ev.Name,
			Direction:   direction,
		})
	}

	return events, nil
}

// transition applies the two-state comparison: only an instantaneous
// disagreement between the fresh verdict and the persisted state counts.
// Crossings that happened strictly between two samples are invisible.
func transition(ev domain.TriggerEvaluation) (domain.TriggerState, domain.Direction, bool) {
	switch {
	case ev.Inside && ev.LastState == domain.StateOutside:
		return domain.StateInside, domain.DirectionEntered, true
	case !ev.Inside && ev.LastState == domain.StateInside:
		return domain.StateOutside, domain.DirectionExited, true
	default:
		return ev.LastState, "", false
	}
}

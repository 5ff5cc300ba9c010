package geofence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollxel/geotimer-bot/internal/domain"
	"github.com/ollxel/geotimer-bot/internal/geo"
)

// fakeTriggerRepo keeps triggers in memory and computes the containment
// verdict with the in-process predicate, mirroring what the SQL path does
// with earthdistance.
type fakeTriggerRepo struct {
	mu       sync.Mutex
	triggers map[int64]*domain.Trigger
	nextID   int64

	failSetStateFor map[int64]error
	setStateCalls   []int64
}

func newFakeTriggerRepo() *fakeTriggerRepo {
	return &fakeTriggerRepo{
		triggers:        make(map[int64]*domain.Trigger),
		nextID:          1,
		failSetStateFor: make(map[int64]error),
	}
}

func (f *fakeTriggerRepo) Add(_ context.Context, trigger *domain.Trigger) (*domain.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	created := *trigger
	created.ID = f.nextID
	f.nextID++
	if created.LastState == "" {
		created.LastState = domain.StateOutside
	}
	f.triggers[created.ID] = &created
	return &created, nil
}

func (f *fakeTriggerRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Trigger
	for _, t := range f.triggers {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTriggerRepo) Delete(_ context.Context, ownerID, triggerID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.triggers[triggerID]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(f.triggers, triggerID)
	return true, nil
}

func (f *fakeTriggerRepo) DeleteAllByOwner(_ context.Context, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, t := range f.triggers {
		if t.OwnerID == ownerID {
			delete(f.triggers, id)
		}
	}
	return nil
}

func (f *fakeTriggerRepo) EvaluateForOwner(_ context.Context, ownerID int64, point domain.Point) ([]domain.TriggerEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.TriggerEvaluation
	for _, t := range f.triggers {
		if t.OwnerID != ownerID {
			continue
		}
		out = append(out, domain.TriggerEvaluation{
			ID:           t.ID,
			Name:         t.Name,
			RadiusMeters: t.RadiusMeters,
			LastState:    t.LastState,
			Inside:       geo.IsInside(point, t.Center, t.RadiusMeters),
		})
	}
	return out, nil
}

func (f *fakeTriggerRepo) SetState(_ context.Context, ownerID, triggerID int64, state domain.TriggerState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setStateCalls = append(f.setStateCalls, triggerID)

	if err := f.failSetStateFor[triggerID]; err != nil {
		return err
	}

	t, ok := f.triggers[triggerID]
	if !ok || t.OwnerID != ownerID {
		return errors.New("trigger not owned")
	}
	t.LastState = state
	return nil
}

func (f *fakeTriggerRepo) stateOf(triggerID int64) domain.TriggerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggers[triggerID].LastState
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Points ~50m and ~200m east of (0,0) along the equator.
var (
	center   = domain.Point{Lat: 0, Lon: 0}
	near50m  = domain.Point{Lat: 0, Lon: 50.0 / 111195}
	far200m  = domain.Point{Lat: 0, Lon: 200.0 / 111195}
	faraway  = domain.Point{Lat: 52.52, Lon: 13.405}
	sampleAt = func(owner int64, p domain.Point) domain.LocationSample {
		return domain.LocationSample{OwnerID: owner, Point: p, Continuous: true}
	}
)

func TestEvaluate_EnterExitScenario(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTriggerRepo()
	trigger, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 1, Name: "Home", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	evaluator := NewEvaluator(repo, testLogger())

	// Sample 50m from the center: one Entered event, state becomes inside.
	events, err := evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.DirectionEntered, events[0].Direction)
	assert.Equal(t, "Home", events[0].TriggerName)
	assert.Equal(t, domain.StateInside, repo.stateOf(trigger.ID))

	// Sample 200m away: one Exited event, state becomes outside.
	events, err = evaluator.Evaluate(ctx, 1, sampleAt(1, far200m))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.DirectionExited, events[0].Direction)
	assert.Equal(t, domain.StateOutside, repo.stateOf(trigger.ID))

	// Third sample also 200m away: no event, no write.
	callsBefore := len(repo.setStateCalls)
	events, err = evaluator.Evaluate(ctx, 1, sampleAt(1, far200m))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, callsBefore, len(repo.setStateCalls))
}

func TestEvaluate_IdempotentWhenStateMatches(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTriggerRepo()
	_, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 1, Name: "Home", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	evaluator := NewEvaluator(repo, testLogger())

	events, err := evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Same sample again: state already matches, so no event and no write.
	events, err = evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, repo.setStateCalls, 1)
}

func TestEvaluate_NoTriggers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTriggerRepo()
	evaluator := NewEvaluator(repo, testLogger())

	events, err := evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEvaluate_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTriggerRepo()

	mine, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 1, Name: "Home", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	theirs, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 2, Name: "Office", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	evaluator := NewEvaluator(repo, testLogger())

	events, err := evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, mine.ID, events[0].TriggerID)

	// Owner 2's trigger is untouched even though the point is inside it.
	assert.Equal(t, domain.StateOutside, repo.stateOf(theirs.ID))
}

func TestEvaluate_WriteFailureIsolatedPerTrigger(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTriggerRepo()

	broken, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 1, Name: "Broken", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	healthy, err := repo.Add(ctx, &domain.Trigger{
		OwnerID: 1, Name: "Healthy", Center: center, RadiusMeters: 100,
	})
	require.NoError(t, err)

	repo.failSetStateFor[broken.ID] = errors.New("connection reset")

	evaluator := NewEvaluator(repo, testLogger())

	events, err := evaluator.Evaluate(ctx, 1, sampleAt(1, near50m))
	require.NoError(t, err)

	// Only the trigger whose write succeeded produces an event.
	require.Len(t, events, 1)
	assert.Equal(t, healthy.ID, events[0].TriggerID)
	assert.Equal(t, domain.StateInside, repo.stateOf(healthy.ID))

	// The failed trigger's transition is treated as not yet applied and
	// will fire again on the next sample.
	assert.Equal(t, domain.StateOutside, repo.stateOf(broken.ID))

	events, err = evaluator.Evaluate(ctx, 1, sampleAt(1, faraway))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.DirectionExited, events[0].Direction)
	assert.Equal(t, healthy.ID, events[0].TriggerID)
}

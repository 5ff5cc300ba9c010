package notify

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

type recordingSender struct {
	sent    []string
	userIDs []int64
	err     error
}

func (s *recordingSender) Send(userID int64, text string) error {
	s.userIDs = append(s.userIDs, userID)
	s.sent = append(s.sent, text)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatch_NamesTheTrigger(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	d.Dispatch(42, []domain.TransitionEvent{
		{TriggerID: 1, TriggerName: "Home", Direction: domain.DirectionEntered},
		{TriggerID: 2, TriggerName: "Office", Direction: domain.DirectionExited},
	})

	assert.Equal(t, []int64{42, 42}, sender.userIDs)
	assert.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "Home")
	assert.Contains(t, sender.sent[0], "entered")
	assert.Contains(t, sender.sent[1], "Office")
	assert.Contains(t, sender.sent[1], "left")
}

func TestDispatch_SendFailureDoesNotStopBatch(t *testing.T) {
	sender := &recordingSender{err: errors.New("network down")}
	d := NewDispatcher(sender, testLogger())

	d.Dispatch(42, []domain.TransitionEvent{
		{TriggerID: 1, TriggerName: "A", Direction: domain.DirectionEntered},
		{TriggerID: 2, TriggerName: "B", Direction: domain.DirectionEntered},
	})

	// Both sends were attempted despite the failures.
	assert.Len(t, sender.sent, 2)
}

func TestDispatch_NoEvents(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	d.Dispatch(42, nil)

	assert.Empty(t, sender.sent)
}

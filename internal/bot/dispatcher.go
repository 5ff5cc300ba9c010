package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
	"github.com/ollxel/geotimer-bot/internal/session"
)

// Dispatcher routes incoming updates to authoring-step handlers.
type Dispatcher struct {
	sessions     session.Manager
	stepHandlers map[session.Step]handlers.Handler
	log          *slog.Logger
	mu           sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(sessions session.Manager, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		sessions:     sessions,
		stepHandlers: make(map[session.Step]handlers.Handler),
		log:          log,
	}
}

// RegisterStepHandler registers a handler for the provided authoring step.
func (d *Dispatcher) RegisterStepHandler(step session.Step, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepHandlers[step] = h
}

// Dispatch routes the update based on the user's active authoring session.
// It reports whether a step handler consumed the update; a user with no
// session in progress leaves the update unhandled.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Sender() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return false, nil
	}

	ctx := context.Background()
	userID := c.Sender().ID

	sess, err := d.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	handler := d.getHandler(sess.Step)
	if handler == nil {
		d.log.Info("no handler registered for step", "step", sess.Step, "user_id", userID)
		return false, nil
	}

	return true, handler(c)
}

func (d *Dispatcher) getHandler(step session.Step) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stepHandlers[step]
}

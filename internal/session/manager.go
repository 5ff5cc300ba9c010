package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userLockKeyPattern = "session:lock:%d"
	lockTTL            = 5 * time.Second
)

var (
	// ErrInvalidTransition indicates that a requested step change is not allowed.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSessionNotFound indicates that no authoring session exists for the user.
	ErrSessionNotFound = errors.New("authoring session not found")
	// ErrSessionLocked indicates that a concurrent operation already holds the lock.
	ErrSessionLocked = errors.New("session is locked, try again later")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe step transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Manager describes the operations supported by the authoring session controller.
type Manager interface {
	// Begin starts a fresh session at the name step, replacing any session
	// in progress.
	Begin(ctx context.Context, userID int64) (*Session, error)
	// Get returns the user's active session.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Save persists the session after validating any step change against
	// the transition whitelist.
	Save(ctx context.Context, sess *Session) error
	// Clear ends the user's session, discarding partial data.
	Clear(ctx context.Context, userID int64) error
	// All returns every active session.
	All(ctx context.Context) ([]*Session, error)
}

// manager is a concrete implementation of Manager backed by Storage and Redis locking.
type manager struct {
	storage     Storage
	log         *slog.Logger
	redisClient *redis.Client
}

// NewManager creates a session controller using the provided storage backend
// and redis client for locking.
func NewManager(storage Storage, log *slog.Logger, redisClient *redis.Client) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		storage:     storage,
		log:         log,
		redisClient: redisClient,
	}
}

// Begin replaces any in-progress session with a fresh one awaiting a name.
func (m *manager) Begin(ctx context.Context, userID int64) (*Session, error) {
	if err := m.lock(ctx, userID); err != nil {
		return nil, err
	}
	defer m.unlock(ctx, userID)

	previous := ""
	if stored, err := m.storage.Get(ctx, userID); err == nil && stored != nil {
		previous = string(stored.Step)
	} else if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	sess := &Session{
		UserID: userID,
		Step:   StepAwaitingName,
	}

	if err := m.storage.Set(ctx, userID, sess); err != nil {
		return nil, err
	}

	transitionRecorder(previous, string(StepAwaitingName))

	return sess, nil
}

// Get proxies to the underlying storage implementation.
func (m *manager) Get(ctx context.Context, userID int64) (*Session, error) {
	return m.storage.Get(ctx, userID)
}

// All returns every persisted session.
func (m *manager) All(ctx context.Context) ([]*Session, error) {
	return m.storage.GetAll(ctx)
}

// Save persists the session under a lock, rejecting illegal step changes.
func (m *manager) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrSessionNotFound
	}

	if err := m.lock(ctx, sess.UserID); err != nil {
		return err
	}
	defer m.unlock(ctx, sess.UserID)

	current := sess.Step

	stored, err := m.storage.Get(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	} else if stored != nil {
		current = stored.Step
	}

	if current != sess.Step {
		if !IsTransitionAllowed(current, sess.Step) {
			if m.log != nil {
				m.log.Warn("invalid session transition",
					"user_id", sess.UserID, "from", current, "to", sess.Step)
			}
			return ErrInvalidTransition
		}

		transitionRecorder(string(current), string(sess.Step))
	}

	return m.storage.Set(ctx, sess.UserID, sess)
}

// Clear removes the stored session via the backing storage while holding the lock.
func (m *manager) Clear(ctx context.Context, userID int64) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	return m.storage.Clear(ctx, userID)
}

func (m *manager) lock(ctx context.Context, userID int64) error {
	if m.redisClient == nil {
		if m.log != nil {
			m.log.Warn("redis client not configured for session locks; skipping", "user_id", userID)
		}
		return nil
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	acquired, err := m.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		if m.log != nil {
			m.log.Error("failed to acquire session lock", "user_id", userID, "error", err)
		}
		return err
	}

	if !acquired {
		if m.log != nil {
			m.log.Warn("session lock already held", "user_id", userID)
		}
		return ErrSessionLocked
	}

	return nil
}

func (m *manager) unlock(ctx context.Context, userID int64) {
	if m.redisClient == nil {
		return
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	if err := m.redisClient.Del(ctx, key).Err(); err != nil && m.log != nil {
		m.log.Error("failed to release session lock", "user_id", userID, "error", err)
	}
}

package bot

import (
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
)

// ownerLocks hands out one mutex per user id so updates from the same user
// are handled strictly in arrival order. Telegram delivers live location
// bursts quickly; interleaving two samples from one user could apply state
// writes out of order. Different users never contend.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[int64]*sync.Mutex)}
}

func (o *ownerLocks) get(userID int64) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[userID] = lock
	}

	return lock
}

// SerializeByOwnerMiddleware runs handlers for the same sender one at a time.
func SerializeByOwnerMiddleware() handlers.Middleware {
	locks := newOwnerLocks()

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if c == nil || c.Sender() == nil {
				return next(c)
			}

			lock := locks.get(c.Sender().ID)
			lock.Lock()
			defer lock.Unlock()

			return next(c)
		}
	}
}

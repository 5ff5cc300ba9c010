package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
	"github.com/ollxel/geotimer-bot/internal/domain"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/repository"
	"github.com/ollxel/geotimer-bot/internal/usercache"
)

const userCacheTTL = 6 * time.Hour

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Something went wrong. Please try again later."
					if errHandler != nil {
						appErr := errors.NewStateError(fmt.Sprintf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "Something went wrong. Please try again later."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else if msg := c.Message(); msg != nil && msg.Location != nil {
					action = "location"
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// AuthMiddleware ensures that each incoming update has a user record behind
// it. The upsert is skipped when the cached profile already matches; live
// location streams would otherwise hit the database on every sample.
func AuthMiddleware(userRepo repository.UserRepository, cache *usercache.Cache, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userRepo == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			ctx := context.Background()
			sender := c.Sender()

			current := &domain.User{
				ID:        sender.ID,
				FirstName: sender.FirstName,
				Username:  sender.Username,
			}

			if cached, err := cache.Get(ctx, sender.ID); err == nil && cached != nil &&
				cached.FirstName == current.FirstName && cached.Username == current.Username {
				return next(c)
			}

			if err := userRepo.Upsert(ctx, current); err != nil {
				log.Error("failed to upsert user", slog.Int64("user_id", sender.ID), slog.Any("error", err))
				return err
			}

			if err := cache.Set(ctx, sender.ID, current, userCacheTTL); err != nil {
				log.Warn("failed to cache user profile", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}

			return next(c)
		}
	}
}

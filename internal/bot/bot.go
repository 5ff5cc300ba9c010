package bot

import (
	"database/sql"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
	"github.com/ollxel/geotimer-bot/internal/bot/keyboard"
	errors "github.com/ollxel/geotimer-bot/internal/errors"
	"github.com/ollxel/geotimer-bot/internal/geocode"
	"github.com/ollxel/geotimer-bot/internal/geofence"
	"github.com/ollxel/geotimer-bot/internal/idempotency"
	"github.com/ollxel/geotimer-bot/internal/middleware"
	"github.com/ollxel/geotimer-bot/internal/notify"
	"github.com/ollxel/geotimer-bot/internal/repository"
	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/ollxel/geotimer-bot/internal/usercache"
	"github.com/ollxel/geotimer-bot/pkg/config"
)

const (
	CommandStart  = "/start"
	CommandAdd    = "/add"
	CommandCancel = "/cancel"
	CommandList   = "/list"
	CommandDelete = "/delete"
	CommandErase  = "/erase"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	db                 *sql.DB
	log                *slog.Logger
	cfg                config.Config
	sessions           session.Manager
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
	locationHandler    handlers.Handler
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	db *sql.DB,
	sessions session.Manager,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
	userRepo repository.UserRepository,
	triggerRepo repository.TriggerRepository,
	userCache *usercache.Cache,
	resolver geocode.Resolver,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.Bot.WebhookURL,
			},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(sessions, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	evaluator := geofence.NewEvaluator(triggerRepo, log)
	notifier := notify.NewDispatcher(notify.NewTelebotSender(tb), log)

	b := &Bot{
		telebot:            tb,
		db:                 db,
		log:                log,
		cfg:                cfg,
		sessions:           sessions,
		rateLimitMw:        rateLimitMw,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
		locationHandler:    handlers.NewLocationHandler(sessions, evaluator, notifier, log),
	}

	b.setupRouter(userRepo, triggerRepo, userCache, resolver)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(
	userRepo repository.UserRepository,
	triggerRepo repository.TriggerRepository,
	userCache *usercache.Cache,
	resolver geocode.Resolver,
) {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(SerializeByOwnerMiddleware())
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(userRepo, userCache, b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.log))
	b.router.RegisterCommand(CommandAdd, handlers.NewAddHandler(b.sessions, b.log))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.sessions, b.log))
	b.router.RegisterCommand(CommandList, handlers.NewListHandler(triggerRepo, b.log))
	b.router.RegisterCommand(CommandDelete, handlers.NewDeleteHandler(triggerRepo, b.keyboard, b.log))
	b.router.RegisterCommand(CommandErase, handlers.NewEraseHandler(b.keyboard, b.log))

	b.router.RegisterCallback(keyboard.DeleteTriggerPrefix, handlers.HandleDeleteTrigger(triggerRepo, b.log))
	b.router.RegisterCallback(keyboard.EraseConfirmData, handlers.HandleEraseConfirm(userRepo, userCache, b.sessions, b.log))
	b.router.RegisterCallback(keyboard.EraseCancelData, handlers.HandleEraseCancel(b.log))

	b.dispatcher.RegisterStepHandler(session.StepAwaitingName, handlers.NewNameStepHandler(b.sessions, b.log))
	b.dispatcher.RegisterStepHandler(session.StepAwaitingLocation, handlers.NewLocationStepHandler(b.sessions, resolver, b.log))
	b.dispatcher.RegisterStepHandler(session.StepAwaitingRadius,
		handlers.NewRadiusStepHandler(b.sessions, triggerRepo, b.cfg.Triggers.MaxRadiusMeters, b.log))

	b.router.SetDefault(func(c telebot.Context) error {
		if c == nil {
			return nil
		}
		return c.Send("I didn't understand that. Send /start to see what I can do.")
	})
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
	b.telebot.Handle(telebot.OnLocation, b.handleLocation)
	// Live location updates arrive as edits of the original message.
	b.telebot.Handle(telebot.OnEdited, b.handleLocation)
}

func (b *Bot) handleLocation(c telebot.Context) error {
	return b.router.Execute(b.locationHandler, c)
}

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ollxel/geotimer-bot/internal/bot"
	"github.com/ollxel/geotimer-bot/internal/database"
	"github.com/ollxel/geotimer-bot/internal/geocode"
	"github.com/ollxel/geotimer-bot/internal/health"
	"github.com/ollxel/geotimer-bot/internal/idempotency"
	"github.com/ollxel/geotimer-bot/internal/middleware"
	"github.com/ollxel/geotimer-bot/internal/ratelimit"
	"github.com/ollxel/geotimer-bot/internal/repository"
	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/ollxel/geotimer-bot/internal/usercache"
	"github.com/ollxel/geotimer-bot/pkg/config"
	"github.com/ollxel/geotimer-bot/pkg/graceful"
	"github.com/ollxel/geotimer-bot/pkg/logger"
	"github.com/ollxel/geotimer-bot/pkg/metrics"
	appredis "github.com/ollxel/geotimer-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(logger.Options{
		Level:         cfg.Logger.Level,
		Format:        cfg.Logger.Format,
		File:          cfg.Logger.File,
		MaxSizeMB:     cfg.Logger.MaxSizeMB,
		MaxBackups:    cfg.Logger.MaxBackups,
		MaxAgeDays:    cfg.Logger.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	log.Info("starting geotimer bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	config.Watch(v, log)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			log.Error("error closing redis", slog.Any("error", cerr))
		}
	}()

	userRepo := repository.NewUserRepository(db, log)
	triggerRepo := repository.NewTriggerRepository(db, log)
	userCache := usercache.NewCache(redisClient.Client)

	sessionStorage := session.NewRedisStorage(redisClient.Client, log)
	sessions := session.NewManager(sessionStorage, log, redisClient.Client)

	var resolver geocode.Resolver = geocode.NewNominatimResolver(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		cfg.Geocoder.Timeout,
		log,
	)
	if cfg.Geocoder.CacheTTL > 0 {
		resolver = geocode.NewCachedResolver(resolver, redisClient.Client, cfg.Geocoder.CacheTTL, log)
	}

	idempotencyManager := idempotency.NewRedisManager(redisClient.Client, 24*time.Hour, log)
	limiter := ratelimit.NewRedisLimiter(redisClient.Client, log)
	rateLimitMw := middleware.NewRateLimitMiddleware(
		limiter,
		cfg.Limits.PerUserLimit,
		cfg.Limits.Window,
		cfg.Limits.Whitelist,
		log,
	)

	b, err := bot.New(
		*cfg,
		log,
		db,
		sessions,
		idempotencyManager,
		rateLimitMw,
		userRepo,
		triggerRepo,
		userCache,
		resolver,
	)
	if err != nil {
		log.Error("failed to build bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	go metrics.NewSessionCollector(sessions).Run(ctx)

	srv := opsServer(cfg, log, checker)
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("ops server stopped with error", slog.Any("error", err))
		}
	}()

	go b.Start()

	<-ctx.Done()

	log.Info("shutting down geotimer bot")
	b.Stop()
}

func opsServer(cfg *config.Config, log *slog.Logger, checker *health.Checker) *graceful.Server {
	mux := http.NewServeMux()

	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		for name, result := range results {
			_, _ = w.Write([]byte(name + ": " + result + "\n"))
		}
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           logger.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return graceful.NewServer(log, httpSrv, cfg.Server.ShutdownTimeout)
}

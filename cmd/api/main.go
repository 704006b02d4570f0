// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Circle Blog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis (session store).
//  5. Run database migrations (idempotent).
//  6. Wire sessions, CSRF and the domain services.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/circleblog/internal/api"
	"github.com/taibuivan/circleblog/internal/core/interaction"
	"github.com/taibuivan/circleblog/internal/core/post"
	"github.com/taibuivan/circleblog/internal/platform/blob"
	"github.com/taibuivan/circleblog/internal/platform/config"
	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/csrf"
	"github.com/taibuivan/circleblog/internal/platform/migration"
	pgstore "github.com/taibuivan/circleblog/internal/platform/postgres"
	redisstore "github.com/taibuivan/circleblog/internal/platform/redis"
	"github.com/taibuivan/circleblog/internal/users/account"
	"github.com/taibuivan/circleblog/internal/users/auth"
	"github.com/taibuivan/circleblog/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Duration("session_ttl", cfg.SessionTTL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Sessions & CSRF ────────────────────────────────────────────────
	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.SessionTTL)
	csrfGuard := csrf.NewGuard(sessions)
	cookie := session.CookieConfig{Name: cfg.SessionCookieName, Secure: cfg.IsProduction()}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckSessions: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.NewUserRepository(pool), sessions, csrfGuard, cfg.MinPasswordLength)

	accountService := account.NewService(account.NewRepository(pool), sessions, csrfGuard, cfg.MinPasswordLength)

	images, err := blob.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	must(log, err, "prepare upload directory")
	postService := post.NewService(post.NewPostgresRepository(pool), images, blob.Policy{
		AllowedTypes: cfg.AllowedFileTypes,
		MaxSize:      cfg.MaxUploadSize,
	})

	interactionService := interaction.NewService(interaction.NewPostgresRepository(pool))

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(authService, cookie, cfg.SessionTTL),
		Account:      account.NewHandler(accountService, cookie, cfg.SessionTTL),
		Posts:        post.NewHandler(postService, cfg.MaxUploadSize),
		Interactions: interaction.NewHandler(interactionService),
		UploadDir:    images.Directory(),
	}

	server := api.NewServer(cfg, log, sessions, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/database"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/handlers"
	"github.com/campuswatch/backend/internal/logging"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/ratelimit"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/routes"
	"github.com/campuswatch/backend/internal/services"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	stores := storage.NewDB(database.DB)
	hub := realtime.NewHub()

	// Redis backs the report quota and fans events out across instances.
	// Without it everything stays in-process, which is fine for one node.
	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()

	var (
		quota ratelimit.Quota
		pub   realtime.Publisher
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		quota = ratelimit.NewRedisQuota(rdb)
		bridge := realtime.NewBridge(hub, rdb)
		go bridge.Run(bridgeCtx)
		pub = bridge
		slog.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		quota = ratelimit.NewMemoryQuota()
		pub = hub
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg, services.NewLogVerificationSender())
	reportService := services.NewReportService(stores, pub, quota, services.NewContentFilter(), services.NewLogPushGateway(), cfg)
	moderationService := services.NewModerationService(stores, pub)
	auditService := services.NewAuditService(stores)
	notificationService := services.NewNotificationService(stores)
	campusService := services.NewCampusService(stores)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	reportHandler := handlers.NewReportHandler(reportService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	moderationHandler := handlers.NewModerationHandler(moderationService, auditService)
	campusHandler := handlers.NewCampusHandler(campusService)
	wsHandler := handlers.NewWSHandler(hub, cfg, stores)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler(cfg),
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, stores,
		authHandler, healthHandler, reportHandler, notificationHandler,
		moderationHandler, campusHandler, wsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopBridge()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// errorHandler renders errors that escape the handlers: router misses,
// limiter rejections, panics surfaced by recover. Service errors are
// rendered in the handlers and never reach this.
func errorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.Envelope{
				Success: false,
				Message: fe.Message,
			})
		}

		status := apperr.HTTPStatus(err)
		message := err.Error()
		if status >= 500 {
			slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
			if !cfg.DevMode {
				message = "internal error"
			}
		}
		return c.Status(status).JSON(dto.Envelope{
			Success: false,
			Message: message,
			Code:    string(apperr.KindOf(err)),
		})
	}
}

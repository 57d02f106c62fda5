package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	if err := database.MigrateShared(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Stats cache: Redis when configured, in-process otherwise
	var kv cache.KV = cache.NewMemory()
	var redisKV *cache.RedisKV
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		r, err := cache.Dial(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, using in-memory stats cache", "error", err)
		} else {
			kv, redisKV = r, r
		}
	}

	var notifier services.Notifier = services.LogNotifier{}
	if cfg.ReminderWebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.ReminderWebhookURL, cfg.ReminderTimeout)
	}

	// Services
	cal := services.NewCalendar(cfg.Location())
	authService := services.NewAuthService(database.DB, cfg)
	profileService := services.NewProfileService(database.DB, cal)
	appointmentService := services.NewAppointmentService(database.DB, cal)
	donationService := services.NewDonationService(database.DB, cal)
	donorService := services.NewDonorDirectoryService(database.DB)
	reportService := services.NewReportService(database.DB, cal, kv, cfg.StatsCacheTTL, cfg.DailyCapacity)
	inventoryService := services.NewInventoryService(database.DB, cal)
	reminderService := services.NewReminderService(database.DB, cal, notifier)

	if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg),
		Health:       handlers.NewHealthHandler(database.Ping),
		Info:         handlers.NewInfoHandler(),
		Profile:      handlers.NewProfileHandler(profileService),
		Appointments: handlers.NewAppointmentHandler(appointmentService, reminderService),
		Donations:    handlers.NewDonationHandler(donationService),
		Admin:        handlers.NewAdminHandler(donorService, reportService),
		Inventory:    handlers.NewInventoryHandler(inventoryService),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
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
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

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
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, database.DB, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "timezone", cfg.ClinicTimezone)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisKV != nil {
		if err := redisKV.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

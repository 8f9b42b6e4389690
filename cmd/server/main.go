package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/bharatcare/claims-backend/internal/config"
	"github.com/bharatcare/claims-backend/internal/database"
	"github.com/bharatcare/claims-backend/internal/handlers"
	"github.com/bharatcare/claims-backend/internal/ledger"
	"github.com/bharatcare/claims-backend/internal/logging"
	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/objstore"
	"github.com/bharatcare/claims-backend/internal/routes"
	"github.com/bharatcare/claims-backend/internal/services"
	"github.com/bharatcare/claims-backend/internal/store"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Store: Postgres in production, in-memory for demo/dev
	var (
		st           store.Store
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
		cleanupDone  chan struct{}
	)
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemoryStore()
		slog.Info("using in-memory store")
	default:
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = store.NewGormStore(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
			pgLogHandler,
		)))

		// Log cleanup (30-day retention)
		cleanupDone = make(chan struct{})
		logging.StartCleanup(db, cleanupDone)
	}

	if cfg.SeedDemo {
		if err := database.SeedDemoUsers(st); err != nil {
			slog.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	// Document object storage (best-effort mirror)
	var objects objstore.ObjectStore = objstore.Disabled{}
	if cfg.MinioEndpoint != "" {
		mc, err := objstore.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			slog.Error("minio init failed, documents stay local only", "error", err)
		} else {
			objects = mc
			slog.Info("document mirror enabled", "bucket", cfg.MinioBucket)
		}
	}

	// Simulated ledger
	var chain ledger.Client
	if cfg.LedgerInstant {
		chain = ledger.NewInstantSimulator()
	} else {
		chain = ledger.NewSimulator()
	}

	// Services
	auditService := services.NewAuditService(st)
	notificationService := services.NewNotificationService(st)
	documentService := services.NewDocumentService(st, objects)
	claimService := services.NewClaimService(st, documentService, notificationService, auditService, cfg.DuplicateWindow)
	contractService := services.NewContractService(st, chain, claimService, notificationService, auditService)
	authService := services.NewAuthService(st, cfg)
	analyticsService := services.NewAnalyticsService(st)

	// Handlers
	var ping func() error
	storeName := "memory"
	if db != nil {
		storeName = "postgres"
		ping = func() error { return database.Ping(db) }
	}
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        handlers.NewHealthHandler(storeName, ping),
		Claims:        handlers.NewClaimHandler(claimService),
		Documents:     handlers.NewDocumentHandler(documentService),
		Contracts:     handlers.NewContractHandler(contractService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Audit:         handlers.NewAuditHandler(auditService),
		Analytics:     handlers.NewAnalyticsHandler(analyticsService),
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
		BodyLimit:    16 * 1024 * 1024,
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
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, st, h)

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

	if cleanupDone != nil {
		close(cleanupDone)
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
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

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

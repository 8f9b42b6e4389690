package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/bharatcare/claims-backend/internal/config"
	"github.com/bharatcare/claims-backend/internal/handlers"
	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Claims        *handlers.ClaimHandler
	Documents     *handlers.DocumentHandler
	Contracts     *handlers.ContractHandler
	Notifications *handlers.NotificationHandler
	Audit         *handlers.AuditHandler
	Analytics     *handlers.AnalyticsHandler
}

func Setup(app *fiber.App, cfg *config.Config, st store.Store, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth endpoints are public but carry a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Everything below requires a valid token resolved to a stored user
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.LoadCurrentUser(st))

	protected.Post("/claims", middleware.RoleRequired(models.RolePatient), h.Claims.Create)
	protected.Get("/claims", h.Claims.List)
	protected.Get("/claims/:id", h.Claims.Get)
	protected.Post("/claims/:id/actions", h.Claims.Action)
	protected.Get("/claims/:id/audit", h.Audit.ListByClaim)

	protected.Get("/documents/:id", h.Documents.Get)

	protected.Get("/notifications", h.Notifications.List)
	protected.Post("/notifications/read-all", h.Notifications.MarkAllRead)

	protected.Get("/contracts", h.Contracts.List)
	protected.Post("/contracts", middleware.RoleRequired(models.RoleAdmin, models.RoleInsurer), h.Contracts.Deploy)
	protected.Get("/contracts/:id", h.Contracts.Get)
	protected.Post("/contracts/:id/actions", h.Contracts.Action)
	protected.Get("/contracts/:id/verify", h.Contracts.Verify)
	protected.Get("/contracts/:id/state", h.Contracts.State)
	protected.Get("/contracts/:id/audit-trail", h.Contracts.AuditTrail)

	analytics := protected.Group("/analytics", middleware.RoleRequired(models.RoleAdmin, models.RoleInsurer))
	analytics.Get("/kpis", h.Analytics.KPIs)
	analytics.Get("/by-status", h.Analytics.ByStatus)
	analytics.Get("/by-diagnosis", h.Analytics.ByDiagnosis)
	analytics.Get("/monthly-totals", h.Analytics.MonthlyTotals)

	admin := protected.Group("/admin", middleware.RoleRequired(models.RoleAdmin))
	admin.Get("/audit", h.Audit.List)
}

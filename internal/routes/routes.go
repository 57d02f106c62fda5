package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Info         *handlers.InfoHandler
	Profile      *handlers.ProfileHandler
	Appointments *handlers.AppointmentHandler
	Donations    *handlers.DonationHandler
	Admin        *handlers.AdminHandler
	Inventory    *handlers.InventoryHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/info/eligibility", h.Info.Eligibility)
	api.Get("/info/privacy", h.Info.PrivacyPolicy)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
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

	// JWT is applied per route so the public auth endpoints stay open.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), h.Auth.Me)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), h.Auth.DeleteAccount)

	// Donor portal
	portal := api.Group("/portal", middleware.JWTProtected(cfg))
	portal.Get("/profile", h.Profile.Get)
	portal.Put("/profile/user", h.Profile.UpdateUser)
	portal.Put("/profile/donor", h.Profile.UpsertDonor)
	portal.Put("/profile/emergency-contact", h.Profile.UpsertEmergencyContact)

	portal.Get("/appointments", h.Appointments.List)
	portal.Get("/appointments/upcoming", h.Appointments.Upcoming)
	portal.Post("/appointments", h.Appointments.Create)
	portal.Patch("/appointments/:id/status", h.Appointments.UpdateStatus)
	portal.Post("/appointments/:id/cancel", h.Appointments.Cancel)

	portal.Get("/donations", h.Donations.History)
	portal.Get("/donations/stats", h.Donations.Stats)
	portal.Post("/donations", h.Donations.Record)

	// Back office (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db))
	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/donors", h.Admin.SearchDonors)
	admin.Get("/donors/:id", h.Admin.DonorDetail)

	admin.Get("/appointments", h.Appointments.ListAll)
	admin.Get("/appointments/today", h.Appointments.Today)
	admin.Patch("/appointments/:id/status", h.Appointments.UpdateStatus)
	admin.Post("/appointments/reminders", h.Appointments.SendReminders)

	admin.Get("/donations", h.Donations.ListInRange)
	admin.Post("/donations", h.Donations.Record)

	admin.Get("/reports", h.Admin.Report)
	admin.Get("/reports/export", h.Admin.ExportReport)

	admin.Get("/inventory", h.Inventory.List)
	admin.Get("/inventory/totals", h.Inventory.Totals)
	admin.Post("/inventory", h.Inventory.Add)
	admin.Patch("/inventory/:id/status", h.Inventory.UpdateStatus)
}

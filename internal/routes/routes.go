package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/handlers"
	"github.com/sehatsaathi/sehat-backend/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Chat     *handlers.ChatHandler
	WhatsApp *handlers.WhatsAppHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

// Options controls environment dependent routes
type Options struct {
	Development              bool
	DisableWebhookValidation bool
	TwilioAuthToken          string
	SecretKey                string
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers, opts Options) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)

	// Chat widget
	app.Post("/web-chat", h.Chat.WebChat)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if opts.Development || opts.DisableWebhookValidation {
		// Development: skip validation for ngrok
		webhooks.Post("/whatsapp", h.WhatsApp.HandleWebhook)
		log.Warn().Msg("⚠️  WhatsApp webhook validation DISABLED")
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(opts.TwilioAuthToken), h.WhatsApp.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if opts.Development {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
	}

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin")
	admin.Post("/login", h.Admin.Login)
	admin.Post("/logout", h.Admin.Logout)
	admin.Get("/logout", h.Admin.Logout)

	protected := admin.Group("", middleware.RequireAdmin(opts.SecretKey))
	protected.Get("/dashboard", h.Admin.Dashboard)
	protected.Get("/appointments", h.Admin.GetAppointments)
	protected.Get("/appointment/action/:id/:action", h.Admin.AppointmentAction)
	protected.Post("/appointment/action/:id/:action", h.Admin.AppointmentAction)
	protected.Get("/patients", h.Admin.GetPatients)
	protected.Get("/doctors", h.Admin.GetDoctors)
	protected.Post("/doctors/:id/status", h.Admin.UpdateDoctorStatus)
	protected.Get("/health-queries", h.Admin.GetHealthQueries)
	protected.Get("/emergency-logs", h.Admin.GetEmergencyLogs)
	protected.Get("/stats", h.Admin.GetStats)
}

package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

// SessionCounter reports live chat sessions
type SessionCounter interface {
	Len(ctx context.Context) int
}

// HealthInfo is static service information reported by /health
type HealthInfo struct {
	Version       string
	Mode          string
	TwilioEnabled bool
	GeminiEnabled bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store    storage.Store
	sessions SessionCounter
	info     HealthInfo
	now      func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Store, sessions SessionCounter, info HealthInfo) *HealthHandler {
	return &HealthHandler{
		store:    store,
		sessions: sessions,
		info:     info,
		now:      time.Now,
	}
}

// Check returns table counts and which integrations are live
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx := c.UserContext()
	timestamp := h.now().Format("2006-01-02 15:04:05")

	counts, err := h.store.TableCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"mode":      h.info.Mode,
		})
	}

	return c.JSON(fiber.Map{
		"status":         "healthy",
		"timestamp":      timestamp,
		"version":        h.info.Version,
		"services":       counts,
		"mode":           h.info.Mode,
		"twilio_enabled": h.info.TwilioEnabled,
		"gemini_enabled": h.info.GeminiEnabled,
		"sessions":       h.sessions.Len(ctx),
	})
}

// Root describes the service and its entry points
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "Sehat Saathi",
		"version": h.info.Version,
		"endpoints": fiber.Map{
			"health":   "/health",
			"chat":     "/web-chat",
			"webhook":  "/webhook/whatsapp",
			"admin":    "/admin",
			"test_bot": "/test/whatsapp",
		},
	})
}

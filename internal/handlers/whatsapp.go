package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go/twiml"

	"github.com/sehatsaathi/sehat-backend/internal/chat"
	"github.com/sehatsaathi/sehat-backend/internal/notify"
)

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	engine Replier
	sender notify.Sender // nil means reply inline as TwiML
}

// NewWhatsAppHandler creates a new WhatsApp handler. With a nil sender the
// reply goes back in the webhook response instead of through the API.
func NewWhatsAppHandler(engine Replier, sender notify.Sender) *WhatsAppHandler {
	return &WhatsAppHandler{
		engine: engine,
		sender: sender,
	}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // whatsapp:+919876543210
	To         string `form:"To"`
	Body       string `form:"Body"`
	NumMedia   string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Warn().Err(err).Msg("⚠️  Error parsing webhook")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status callbacks carry no body
	if payload.From == "" || strings.TrimSpace(payload.Body) == "" {
		return h.respond(c, "")
	}

	phone := notify.StripWhatsApp(payload.From)
	log.Info().Str("from", phone).Str("sid", payload.MessageSid).Msg("📱 WhatsApp message received")

	reply, err := h.engine.ReplyFrom(c.UserContext(), phone, phone, payload.Body)
	if err != nil {
		log.Error().Err(err).Str("from", phone).Msg("❌ Error processing message")
		reply = chat.SystemErrorText
	}

	if h.sender == nil {
		return h.respond(c, reply)
	}

	if err := h.sender.Send(c.UserContext(), phone, reply); err != nil {
		log.Error().Err(err).Str("to", phone).Msg("❌ Failed to send WhatsApp response")
	} else {
		log.Info().Str("to", phone).Msg("✅ Response sent")
	}
	return h.respond(c, "")
}

func (h *WhatsAppHandler) respond(c *fiber.Ctx, message string) error {
	var verbs []twiml.Element
	if message != "" {
		verbs = append(verbs, &twiml.MessagingMessage{Body: message})
	}
	out, err := twiml.Messages(verbs)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(out)
}

// TestWebhookPayload drives the WhatsApp flow without Twilio
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (development only)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Info().Str("from", payload.From).Msg("🧪 Test webhook received")

	phone := notify.StripWhatsApp(payload.From)
	reply, err := h.engine.ReplyFrom(c.UserContext(), phone, phone, payload.Message)
	if err != nil {
		log.Error().Err(err).Msg("❌ Error processing test message")
		reply = chat.SystemErrorText
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"from":     phone,
		"response": reply,
	})
}

package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/chat"
)

// DefaultSessionID is used when a web client sends no session id
const DefaultSessionID = "web"

// Replier produces the next chat reply for a session.
type Replier interface {
	ReplyFrom(ctx context.Context, sessionID, phone, text string) (string, error)
}

// ChatHandler serves the web chat widget
type ChatHandler struct {
	engine Replier
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine Replier) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatRequest is the body of POST /web-chat
type ChatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"session_id"`
}

// ChatResponse is always returned with status 200 so the widget can render it
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id,omitempty"`
}

// WebChat handles one message from the web widget
func (h *ChatHandler) WebChat(c *fiber.Ctx) error {
	var req ChatRequest
	if len(c.Body()) == 0 || c.BodyParser(&req) != nil {
		return c.JSON(ChatResponse{Reply: chat.InvalidRequestText})
	}
	if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
		return c.JSON(ChatResponse{Reply: chat.EmptyMessageText})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	reply, err := h.engine.ReplyFrom(c.UserContext(), sessionID, "", *req.Message)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("❌ Chat error")
		reply = chat.SystemErrorText
	}

	return c.JSON(ChatResponse{Reply: reply, SessionID: sessionID})
}

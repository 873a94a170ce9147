// Package notify delivers WhatsApp messages to patients through Twilio, or
// logs them when Twilio is not configured.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappPrefix = "whatsapp:"

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// messageCreator is the part of the Twilio API we use.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsApp sends messages via the Twilio WhatsApp sender.
type WhatsApp struct {
	api  messageCreator
	from string
}

// NewWhatsApp creates a Twilio-backed sender. from may be given with or
// without the "whatsapp:" prefix.
func NewWhatsApp(accountSID, authToken, from string) (*WhatsApp, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsApp{api: client.Api, from: WhatsAppAddress(from)}, nil
}

// WhatsAppAddress adds the channel prefix Twilio expects.
func WhatsAppAddress(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, whatsappPrefix) {
		return phone
	}
	return whatsappPrefix + phone
}

// StripWhatsApp removes the channel prefix from a Twilio address.
func StripWhatsApp(addr string) string {
	return strings.TrimPrefix(strings.TrimSpace(addr), whatsappPrefix)
}

// Send sends a WhatsApp message via Twilio
func (w *WhatsApp) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(w.from)
	params.SetTo(WhatsAppAddress(to))
	params.SetBody(body)

	resp, err := w.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Info().Str("to", to).Str("sid", sid).Msg("✅ WhatsApp message sent!")
	return nil
}

// Simulator logs messages instead of sending them.
type Simulator struct{}

func (Simulator) Send(_ context.Context, to, body string) error {
	log.Info().Str("to", to).Str("body", body).Msg("📱 [WHATSAPP SIMULATION] Message would be sent via WhatsApp")
	return nil
}

// New returns a Twilio sender when credentials are complete, otherwise the
// simulator.
func New(accountSID, authToken, from string) Sender {
	w, err := NewWhatsApp(accountSID, authToken, from)
	if err != nil {
		log.Warn().Msg("⚠️  Twilio credentials not found - WhatsApp messages will be simulated")
		return Simulator{}
	}
	return w
}

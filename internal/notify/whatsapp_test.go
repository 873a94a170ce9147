package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	params []*twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeAPI) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, p)
	return f.resp, f.err
}

func strPtr(s string) *string { return &s }

func TestWhatsApp_Send(t *testing.T) {
	api := &fakeAPI{resp: &twilioApi.ApiV2010Message{Sid: strPtr("SM123")}}
	w := &WhatsApp{api: api, from: WhatsAppAddress("+14155238886")}

	require.NoError(t, w.Send(context.Background(), "+919876543210", "hello"))
	require.Len(t, api.params, 1)
	assert.Equal(t, "whatsapp:+14155238886", *api.params[0].From)
	assert.Equal(t, "whatsapp:+919876543210", *api.params[0].To)
	assert.Equal(t, "hello", *api.params[0].Body)
}

func TestWhatsApp_SendErrors(t *testing.T) {
	w := &WhatsApp{api: &fakeAPI{err: errors.New("401")}, from: "whatsapp:+1"}
	assert.Error(t, w.Send(context.Background(), "+91", "x"))

	code := 63016
	w = &WhatsApp{api: &fakeAPI{resp: &twilioApi.ApiV2010Message{ErrorCode: &code, ErrorMessage: strPtr("outside window")}}, from: "whatsapp:+1"}
	assert.ErrorContains(t, w.Send(context.Background(), "+91", "x"), "outside window")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeAPI{}
	w = &WhatsApp{api: api, from: "whatsapp:+1"}
	assert.ErrorIs(t, w.Send(ctx, "+91", "x"), context.Canceled)
	assert.Empty(t, api.params)
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+911234567890", WhatsAppAddress("+911234567890"))
	assert.Equal(t, "whatsapp:+911234567890", WhatsAppAddress("whatsapp:+911234567890"))
	assert.Equal(t, "+911234567890", StripWhatsApp("whatsapp:+911234567890"))
}

func TestNew_FallsBackToSimulator(t *testing.T) {
	assert.IsType(t, Simulator{}, New("", "", ""))
	assert.IsType(t, &WhatsApp{}, New("AC123", "token", "+14155238886"))
	assert.NoError(t, Simulator{}.Send(context.Background(), "+91", "hi"))
}

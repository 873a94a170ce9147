package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
	"github.com/sehatsaathi/sehat-backend/internal/chat"
	"github.com/sehatsaathi/sehat-backend/internal/middleware"
	"github.com/sehatsaathi/sehat-backend/internal/models"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

type replyCall struct{ sessionID, phone, text string }

type fakeReplier struct {
	mu    sync.Mutex
	calls []replyCall
	reply string
	err   error
}

func (f *fakeReplier) ReplyFrom(_ context.Context, sessionID, phone, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, replyCall{sessionID, phone, text})
	return f.reply, f.err
}

type sent struct{ to, body string }

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to, body})
	return f.err
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewNotFoundError("x"), 404},
		{apperrors.NewValidationError("x"), 400},
		{&apperrors.AppError{Type: apperrors.ErrorTypeConflict, Message: "x"}, 409},
		{apperrors.NewUnauthorizedError("x"), 401},
		{apperrors.NewExternalError("x", errors.New("y")), 502},
		{apperrors.NewInternalError("x", errors.New("y")), 500},
		{fiber.ErrMethodNotAllowed, 405},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWebChat(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		replierErr  error
		wantReply   string
		wantSession string
		wantCalled  bool
	}{
		{"invalid json", "{", nil, chat.InvalidRequestText, "", false},
		{"empty body", "", nil, chat.InvalidRequestText, "", false},
		{"missing message", `{"session_id":"abc"}`, nil, chat.EmptyMessageText, "", false},
		{"blank message", `{"message":"   "}`, nil, chat.EmptyMessageText, "", false},
		{"default session", `{"message":"hi"}`, nil, "pong", DefaultSessionID, true},
		{"explicit session", `{"message":"1","session_id":"abc"}`, nil, "pong", "abc", true},
		{"engine failure", `{"message":"1","session_id":"abc"}`, errors.New("redis down"), chat.SystemErrorText, "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replier := &fakeReplier{reply: "pong", err: tt.replierErr}
			app := newApp()
			app.Post("/web-chat", NewChatHandler(replier).WebChat)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/web-chat", tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			out := decode(t, resp)
			assert.Equal(t, tt.wantReply, out["reply"])
			if tt.wantCalled {
				require.Len(t, replier.calls, 1)
				assert.Equal(t, tt.wantSession, replier.calls[0].sessionID)
				assert.Empty(t, replier.calls[0].phone)
			} else {
				assert.Empty(t, replier.calls)
			}
		})
	}
}

func webhookForm(from, body string) *http.Request {
	form := url.Values{"From": {from}, "Body": {body}, "MessageSid": {"SM1"}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWhatsAppWebhook_InlineTwiML(t *testing.T) {
	replier := &fakeReplier{reply: "namaste"}
	app := newApp()
	app.Post("/webhook/whatsapp", NewWhatsAppHandler(replier, nil).HandleWebhook)

	resp, err := app.Test(webhookForm("whatsapp:+919876543210", "hi"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<Message>")
	assert.Contains(t, string(body), "namaste")

	require.Len(t, replier.calls, 1)
	assert.Equal(t, replyCall{"+919876543210", "+919876543210", "hi"}, replier.calls[0])
}

func TestWhatsAppWebhook_SendsThroughSender(t *testing.T) {
	replier := &fakeReplier{reply: "namaste"}
	sender := &fakeSender{}
	app := newApp()
	app.Post("/webhook/whatsapp", NewWhatsAppHandler(replier, sender).HandleWebhook)

	resp, err := app.Test(webhookForm("whatsapp:+919876543210", "hi"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "<Message>")
	assert.Equal(t, []sent{{"+919876543210", "namaste"}}, sender.sent)
}

func TestWhatsAppWebhook_StatusCallbackIgnored(t *testing.T) {
	replier := &fakeReplier{reply: "namaste"}
	app := newApp()
	app.Post("/webhook/whatsapp", NewWhatsAppHandler(replier, nil).HandleWebhook)

	resp, err := app.Test(webhookForm("whatsapp:+919876543210", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, replier.calls)
}

func TestWhatsAppTestWebhook(t *testing.T) {
	replier := &fakeReplier{reply: "namaste"}
	app := newApp()
	app.Post("/test/whatsapp", NewWhatsAppHandler(replier, nil).HandleTestWebhook)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/test/whatsapp", `{"from":"+919876543210","message":"menu"}`))
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, "namaste", out["response"])

	resp, err = app.Test(jsonRequest(http.MethodPost, "/test/whatsapp", `{"message":"menu"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type sessionCount int

func (s sessionCount) Len(context.Context) int { return int(s) }

func TestHealthCheck(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.SeedDefaults(context.Background()))

	app := newApp()
	h := NewHealthHandler(store, sessionCount(2), HealthInfo{Version: "test", Mode: "memory", GeminiEnabled: true})
	app.Get("/health", h.Check)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, "memory", out["mode"])
	assert.Equal(t, false, out["twilio_enabled"])
	assert.Equal(t, true, out["gemini_enabled"])
	assert.EqualValues(t, 2, out["sessions"])

	services := out["services"].(map[string]interface{})
	assert.EqualValues(t, 4, services["doctors"])
	assert.EqualValues(t, 0, services["patients"])
}

const testSecret = "test-secret"

type adminFixture struct {
	app    *fiber.App
	store  *storage.MemoryStore
	sender *fakeSender
	token  string
}

func newAdminFixture(t *testing.T, cfg AdminConfig) *adminFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SeedDefaults(context.Background()))
	sender := &fakeSender{}

	cfg.Secret = testSecret
	h := NewAdminHandler(store, sender, cfg)

	app := newApp()
	admin := app.Group("/admin")
	admin.Post("/login", h.Login)
	admin.Post("/logout", h.Logout)
	protected := admin.Group("", middleware.RequireAdmin(testSecret))
	protected.Get("/dashboard", h.Dashboard)
	protected.Get("/appointments", h.GetAppointments)
	protected.Post("/appointment/action/:id/:action", h.AppointmentAction)
	protected.Get("/patients", h.GetPatients)
	protected.Get("/doctors", h.GetDoctors)
	protected.Post("/doctors/:id/status", h.UpdateDoctorStatus)
	protected.Get("/health-queries", h.GetHealthQueries)
	protected.Get("/emergency-logs", h.GetEmergencyLogs)
	protected.Get("/stats", h.GetStats)

	return &adminFixture{app: app, store: store, sender: sender}
}

func (f *adminFixture) login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminCookie {
			f.token = c.Value
		}
	}
	return resp
}

func (f *adminFixture) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	req := jsonRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: f.token})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (f *adminFixture) book(t *testing.T, phone string) *models.Appointment {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.CreatePatient(ctx, &models.Patient{Name: "Asha", Phone: phone})
	require.NoError(t, err)
	a, err := f.store.CreateAppointment(ctx, &models.Appointment{PatientID: p.ID, HospitalName: "City Clinic", Slot: "2026-10-16 10:00"})
	require.NoError(t, err)
	return a
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123"})

	resp := f.login(t, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.token)

	resp = f.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.login(t, "admin", "sehat123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, f.token)

	resp = f.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 4, stats["total_doctors"])
}

func TestAdminLogin_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cure"), bcrypt.MinCost)
	require.NoError(t, err)
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123", PasswordHash: string(hash)})

	assert.Equal(t, http.StatusUnauthorized, f.login(t, "admin", "sehat123").StatusCode)
	assert.Equal(t, http.StatusOK, f.login(t, "admin", "s3cure").StatusCode)
}

func TestAdminLogin_EmptyPasswordNeverMatches(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin"})
	assert.Equal(t, http.StatusUnauthorized, f.login(t, "admin", "").StatusCode)
}

func TestAdminAppointmentAction(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123"})
	f.login(t, "admin", "sehat123")

	withPhone := f.book(t, "+919876543210")
	web := f.book(t, models.PhoneWebUser)
	ctx := context.Background()

	resp := f.do(t, http.MethodPost, "/admin/appointment/action/"+itoa(withPhone.ID)+"/accept", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := f.store.GetAppointment(ctx, withPhone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, got.Status)
	assert.Equal(t, "admin", got.ApprovedBy)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "+919876543210", f.sender.sent[0].to)
	assert.Contains(t, f.sender.sent[0].body, "CONFIRMED")

	resp = f.do(t, http.MethodPost, "/admin/appointment/action/"+itoa(web.ID)+"/reject", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got, err = f.store.GetAppointment(ctx, web.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusRejected, got.Status)
	assert.Len(t, f.sender.sent, 1)

	resp = f.do(t, http.MethodPost, "/admin/appointment/action/"+itoa(withPhone.ID)+"/approve", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/appointment/action/999/accept", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/appointment/action/abc/accept", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/appointment/action/"+itoa(web.ID)+"/delete", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/admin/appointment/action/"+itoa(web.ID)+"/delete", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	out := decode(t, f.do(t, http.MethodGet, "/admin/appointments", ""))
	assert.EqualValues(t, 1, out["count"])
}

func TestAdminDoctorStatus(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123"})
	f.login(t, "admin", "sehat123")

	resp := f.do(t, http.MethodPost, "/admin/doctors/1/status", `{"status":"inactive"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	doctor := decode(t, resp)["doctor"].(map[string]interface{})
	assert.Equal(t, "inactive", doctor["status"])
	assert.EqualValues(t, 1, doctor["id"])
	active, err := f.store.ListActiveDoctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 3)

	resp = f.do(t, http.MethodPost, "/admin/doctors/1/status", `{"status":"retired"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/doctors/99/status", `{"status":"active"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminListings(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123"})
	f.login(t, "admin", "sehat123")
	ctx := context.Background()

	f.book(t, "+919876543210")
	require.NoError(t, f.store.SaveHealthQuery(ctx, &models.HealthQuery{PatientPhone: "web_user", Symptoms: "bukhar", AIResponse: "rest", Severity: models.SeverityLow}))
	require.NoError(t, f.store.LogEmergencyContact(ctx, &models.EmergencyContact{PatientPhone: "web_user", EmergencyType: "nearby_search", Pincode: "110001", ActionTaken: "listed"}))

	for target, key := range map[string]string{
		"/admin/patients":       "patients",
		"/admin/doctors":        "doctors",
		"/admin/health-queries": "queries",
		"/admin/emergency-logs": "logs",
	} {
		resp := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, target)
		out := decode(t, resp)
		assert.NotEmpty(t, out[key], target)
	}

	out := decode(t, f.do(t, http.MethodGet, "/admin/stats", ""))
	assert.Len(t, out["top_hospitals"], 1)
	assert.Len(t, out["common_symptoms"], 1)
	assert.Len(t, out["monthly_appointments"], 1)
}

func TestAdminLogout(t *testing.T) {
	f := newAdminFixture(t, AdminConfig{Username: "admin", Password: "sehat123"})
	f.login(t, "admin", "sehat123")

	resp := f.do(t, http.MethodPost, "/admin/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminCookie && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

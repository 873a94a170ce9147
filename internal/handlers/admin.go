package handlers

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
	"github.com/sehatsaathi/sehat-backend/internal/middleware"
	"github.com/sehatsaathi/sehat-backend/internal/models"
	"github.com/sehatsaathi/sehat-backend/internal/notify"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

const (
	recentLimit       = 5
	statsMonths       = 6
	statsTopHospitals = 10
	statsTopSymptoms  = 10
)

// AdminConfig holds admin credentials and token settings
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt, preferred over Password when set
	Secret       string
	SecureCookie bool
}

// AdminHandler handles admin operations
type AdminHandler struct {
	store  storage.Store
	sender notify.Sender
	cfg    AdminConfig
	now    func() time.Time
}

// NewAdminHandler creates a new admin handler. sender may be nil.
func NewAdminHandler(store storage.Store, sender notify.Sender, cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		store:  store,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

// LoginRequest accepts form or JSON credentials
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AdminHandler) checkPassword(password string) bool {
	if h.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(password)) == nil
	}
	if h.cfg.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Password)) == 1
}

// Login issues the admin token cookie
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	if !userOK || !h.checkPassword(req.Password) {
		log.Warn().Str("username", req.Username).Str("ip", c.IP()).Msg("⚠️  Failed admin login")
		return apperrors.NewUnauthorizedError("Invalid credentials!")
	}

	token, expires, err := middleware.IssueAdminToken(h.cfg.Secret, req.Username, h.now())
	if err != nil {
		return apperrors.NewInternalError("failed to sign admin token", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Str("username", req.Username).Msg("🔐 Admin logged in")
	return c.JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"expires_at": expires,
	})
}

// Logout clears the admin cookie
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "",
		Path:     "/",
		Expires:  h.now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Dashboard returns headline stats with the latest appointments and patients
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	stats, err := h.store.DashboardStats(ctx)
	if err != nil {
		return err
	}
	appointments, err := h.store.RecentAppointments(ctx, recentLimit)
	if err != nil {
		return err
	}
	patients, err := h.store.RecentPatients(ctx, recentLimit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"stats":               stats,
		"recent_appointments": appointments,
		"recent_patients":     patients,
	})
}

// GetAppointments lists all appointments, newest first
func (h *AdminHandler) GetAppointments(c *fiber.Ctx) error {
	appointments, err := h.store.ListAppointments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"appointments": appointments,
		"count":        len(appointments),
	})
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid id")
	}
	return uint(id), nil
}

// AppointmentAction accepts, rejects or deletes an appointment
func (h *AdminHandler) AppointmentAction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	action := c.Params("action")

	if action == "delete" {
		if err := h.store.DeleteAppointment(ctx, id); err != nil {
			return err
		}
		log.Info().Uint("appointment_id", id).Msg("🗑️ Appointment deleted")
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Appointment deleted successfully!",
		})
	}

	status, ok := models.AppointmentAction(action)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("Unknown action %q", action))
	}

	if err := h.store.UpdateAppointmentStatus(ctx, id, status, middleware.AdminUsername(c)); err != nil {
		return err
	}
	appointment, err := h.store.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	h.notifyPatient(c, appointment)
	log.Info().Uint("appointment_id", id).Str("status", status).Msg("✅ Appointment updated")

	message := "Appointment accepted successfully!"
	if status == models.AppointmentStatusRejected {
		message = "Appointment rejected!"
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     message,
		"appointment": appointment,
	})
}

func (h *AdminHandler) notifyPatient(c *fiber.Ctx, a *models.Appointment) {
	if h.sender == nil || !models.HasRealPhone(a.PatientPhone) {
		return
	}
	if err := h.sender.Send(c.UserContext(), a.PatientPhone, statusChangeMessage(a)); err != nil {
		log.Error().Err(err).Uint("appointment_id", a.ID).Msg("❌ Failed to notify patient")
	}
}

func statusChangeMessage(a *models.Appointment) string {
	if a.Status == models.AppointmentStatusConfirmed {
		return fmt.Sprintf("✅ Sehat Saathi: Appointment #%d at %s on %s is CONFIRMED. Please arrive 15 minutes early.",
			a.ID, a.HospitalName, a.Slot)
	}
	return fmt.Sprintf("❌ Sehat Saathi: Appointment #%d at %s on %s could not be confirmed. Type 'menu' to book another slot.",
		a.ID, a.HospitalName, a.Slot)
}

// GetPatients lists all patients
func (h *AdminHandler) GetPatients(c *fiber.Ctx) error {
	patients, err := h.store.ListPatients(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"patients": patients,
		"count":    len(patients),
	})
}

// GetDoctors lists the whole doctor directory
func (h *AdminHandler) GetDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// UpdateDoctorStatus toggles a doctor between active and inactive
func (h *AdminHandler) UpdateDoctorStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}

	ctx := c.UserContext()
	if err := h.store.UpdateDoctorStatus(ctx, id, req.Status); err != nil {
		return err
	}
	doctor, err := h.store.GetDoctor(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"doctor":  doctor,
	})
}

// GetHealthQueries lists advice given, newest first
func (h *AdminHandler) GetHealthQueries(c *fiber.Ctx) error {
	queries, err := h.store.ListHealthQueries(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"queries": queries,
		"count":   len(queries),
	})
}

// GetEmergencyLogs lists emergency actions, newest first
func (h *AdminHandler) GetEmergencyLogs(c *fiber.Ctx) error {
	logs, err := h.store.ListEmergencyLogs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"logs":    logs,
		"count":   len(logs),
	})
}

// GetStats returns monthly appointments, busiest hospitals and common symptoms
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	monthly, err := h.store.MonthlyAppointments(ctx, statsMonths)
	if err != nil {
		return err
	}
	hospitals, err := h.store.TopHospitals(ctx, statsTopHospitals)
	if err != nil {
		return err
	}
	symptoms, err := h.store.CommonSymptoms(ctx, statsTopSymptoms)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":              true,
		"monthly_appointments": monthly,
		"top_hospitals":        hospitals,
		"common_symptoms":      symptoms,
	})
}

package storage

import (
	"context"
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/models"
)

// EmergencyBooking carries what the emergency flow knows at booking time.
type EmergencyBooking struct {
	PatientName  string
	PatientPhone string
	HospitalName string
	Pincode      string
	MapsLink     string
	Slot         string
}

// Store defines the interface for storage operations
type Store interface {
	// Patient operations
	CreatePatient(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	ListPatients(ctx context.Context) ([]*models.Patient, error)
	RecentPatients(ctx context.Context, limit int) ([]*models.Patient, error)

	// Appointment operations
	CreateAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	CreateEmergencyAppointment(ctx context.Context, booking EmergencyBooking) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointments(ctx context.Context) ([]*models.Appointment, error)
	RecentAppointments(ctx context.Context, limit int) ([]*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uint, status, approvedBy string) error
	DeleteAppointment(ctx context.Context, id uint) error
	ListAppointmentsDueForReminder(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id uint, at time.Time) error

	// Doctor and service catalog
	ListActiveDoctors(ctx context.Context) ([]*models.Doctor, error)
	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
	GetDoctor(ctx context.Context, id uint) (*models.Doctor, error)
	UpdateDoctorStatus(ctx context.Context, id uint, status string) error
	ListServices(ctx context.Context) ([]*models.Service, error)
	SeedDefaults(ctx context.Context) error

	// Append-only logs
	SaveHealthQuery(ctx context.Context, query *models.HealthQuery) error
	ListHealthQueries(ctx context.Context) ([]*models.HealthQuery, error)
	LogEmergencyContact(ctx context.Context, entry *models.EmergencyContact) error
	ListEmergencyLogs(ctx context.Context) ([]*models.EmergencyContact, error)

	// Reporting
	TableCounts(ctx context.Context) (*models.TableCounts, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	MonthlyAppointments(ctx context.Context, months int) ([]models.MonthlyAppointments, error)
	TopHospitals(ctx context.Context, limit int) ([]models.HospitalCount, error)
	CommonSymptoms(ctx context.Context, limit int) ([]models.SymptomCount, error)
}

// slotBetween reports whether a stored slot string falls within [from, to).
func slotBetween(slot string, from, to time.Time) bool {
	t, err := time.ParseInLocation(models.SlotLayout, slot, from.Location())
	if err != nil {
		return false
	}
	return !t.Before(from) && t.Before(to)
}

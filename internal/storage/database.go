package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
	"github.com/sehatsaathi/sehat-backend/internal/models"
)

// DatabaseStore implements Store on top of gorm.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// AllModels lists every table the service owns, in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Patient{},
		&models.Appointment{},
		&models.Doctor{},
		&models.Service{},
		&models.HealthQuery{},
		&models.EmergencyContact{},
	}
}

// Migrate creates missing tables. It never drops or alters existing columns
// beyond what AutoMigrate adds.
func (s *DatabaseStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return apperrors.NewInternalError("failed to migrate database", err)
	}
	return nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(what + " not found")
	}
	return apperrors.NewInternalError("failed to load "+what, err)
}

// Patient operations

func (s *DatabaseStore) CreatePatient(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.Name == "" {
		return nil, apperrors.NewValidationError("patient name is required")
	}
	if err := s.db.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to create patient", err)
	}
	log.Info().Uint("patient_id", patient.ID).Str("name", patient.Name).Msg("✅ Patient saved")
	return patient, nil
}

func (s *DatabaseStore) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, notFoundOr(err, "patient")
	}
	return &patient, nil
}

func (s *DatabaseStore) ListPatients(ctx context.Context) ([]*models.Patient, error) {
	return s.RecentPatients(ctx, -1)
}

func (s *DatabaseStore) RecentPatients(ctx context.Context, limit int) ([]*models.Patient, error) {
	var patients []*models.Patient
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&patients).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	return patients, nil
}

// Appointment operations

func (s *DatabaseStore) CreateAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := prepareAppointment(appointment); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to create appointment", err)
	}
	log.Info().Uint("appointment_id", appointment.ID).Uint("patient_id", appointment.PatientID).Msg("✅ Appointment saved")
	return appointment, nil
}

// CreateEmergencyAppointment writes the patient and a confirmed emergency
// appointment in one transaction.
func (s *DatabaseStore) CreateEmergencyAppointment(ctx context.Context, booking EmergencyBooking) (*models.Appointment, error) {
	patient, appointment, err := emergencyRecords(booking)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(patient).Error; err != nil {
			return err
		}
		appointment.PatientID = patient.ID
		return tx.Create(appointment).Error
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create emergency appointment", err)
	}

	log.Warn().Uint("appointment_id", appointment.ID).Str("hospital", appointment.HospitalName).Msg("🚨 Emergency appointment saved")
	return appointment, nil
}

func (s *DatabaseStore) joinedAppointments(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("appointments.*, patients.name AS patient_name, patients.phone AS patient_phone").
		Joins("LEFT JOIN patients ON patients.id = appointments.patient_id")
}

func (s *DatabaseStore) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.joinedAppointments(ctx).Where("appointments.id = ?", id).Take(&appointment).Error; err != nil {
		return nil, notFoundOr(err, "appointment")
	}
	return &appointment, nil
}

func (s *DatabaseStore) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return s.RecentAppointments(ctx, -1)
}

func (s *DatabaseStore) RecentAppointments(ctx context.Context, limit int) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := s.joinedAppointments(ctx).Order("appointments.created_at DESC").Limit(limit).Find(&appointments).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	return appointments, nil
}

func (s *DatabaseStore) UpdateAppointmentStatus(ctx context.Context, id uint, status, approvedBy string) error {
	if err := models.ValidateAppointmentStatus(status); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	updates := map[string]interface{}{"status": status}
	if approvedBy != "" {
		updates["approved_by"] = approvedBy
		updates["approved_at"] = time.Now()
	}

	res := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.NewInternalError("failed to update appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

func (s *DatabaseStore) DeleteAppointment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return apperrors.NewInternalError("failed to delete appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

// ListAppointmentsDueForReminder relies on the slot layout sorting
// lexicographically.
func (s *DatabaseStore) ListAppointmentsDueForReminder(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := s.joinedAppointments(ctx).
		Where("appointments.status = ?", models.AppointmentStatusConfirmed).
		Where("appointments.reminder_sent_at IS NULL").
		Where("appointments.slot >= ? AND appointments.slot < ?", from.Format(models.SlotLayout), to.Format(models.SlotLayout)).
		Find(&appointments).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list due appointments", err)
	}
	return appointments, nil
}

func (s *DatabaseStore) MarkReminderSent(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Update("reminder_sent_at", at).Error
	if err != nil {
		return apperrors.NewInternalError("failed to mark reminder", err)
	}
	return nil
}

// Doctor and service catalog

func (s *DatabaseStore) ListActiveDoctors(ctx context.Context) ([]*models.Doctor, error) {
	var doctors []*models.Doctor
	err := s.db.WithContext(ctx).Where("status = ?", models.DoctorStatusActive).Order("id").Find(&doctors).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	return doctors, nil
}

func (s *DatabaseStore) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	var doctors []*models.Doctor
	if err := s.db.WithContext(ctx).Order("id").Find(&doctors).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	return doctors, nil
}

func (s *DatabaseStore) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, notFoundOr(err, "doctor")
	}
	return &doctor, nil
}

func (s *DatabaseStore) UpdateDoctorStatus(ctx context.Context, id uint, status string) error {
	if status != models.DoctorStatusActive && status != models.DoctorStatusInactive {
		return apperrors.NewValidationError(fmt.Sprintf("invalid doctor status %q", status))
	}
	res := s.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.NewInternalError("failed to update doctor", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("doctor not found")
	}
	return nil
}

func (s *DatabaseStore) ListServices(ctx context.Context) ([]*models.Service, error) {
	var services []*models.Service
	if err := s.db.WithContext(ctx).Order("id").Find(&services).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	return services, nil
}

// SeedDefaults fills the doctor and service catalogs when they are empty.
func (s *DatabaseStore) SeedDefaults(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Doctor{}).Count(&n).Error; err != nil {
		return apperrors.NewInternalError("failed to count doctors", err)
	}
	if n == 0 {
		doctors := models.DefaultDoctors()
		if err := db.Create(&doctors).Error; err != nil {
			return apperrors.NewInternalError("failed to seed doctors", err)
		}
		log.Info().Int("count", len(doctors)).Msg("👨‍⚕️ Seeded default doctors")
	}

	if err := db.Model(&models.Service{}).Count(&n).Error; err != nil {
		return apperrors.NewInternalError("failed to count services", err)
	}
	if n == 0 {
		services := models.DefaultServices()
		if err := db.Create(&services).Error; err != nil {
			return apperrors.NewInternalError("failed to seed services", err)
		}
		log.Info().Int("count", len(services)).Msg("🩺 Seeded default services")
	}
	return nil
}

// Append-only logs

func (s *DatabaseStore) SaveHealthQuery(ctx context.Context, query *models.HealthQuery) error {
	if query.Severity == "" {
		query.Severity = models.SeverityLow
	}
	if err := s.db.WithContext(ctx).Create(query).Error; err != nil {
		return apperrors.NewInternalError("failed to save health query", err)
	}
	return nil
}

func (s *DatabaseStore) ListHealthQueries(ctx context.Context) ([]*models.HealthQuery, error) {
	var queries []*models.HealthQuery
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&queries).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list health queries", err)
	}
	return queries, nil
}

func (s *DatabaseStore) LogEmergencyContact(ctx context.Context, entry *models.EmergencyContact) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperrors.NewInternalError("failed to log emergency contact", err)
	}
	return nil
}

func (s *DatabaseStore) ListEmergencyLogs(ctx context.Context) ([]*models.EmergencyContact, error) {
	var logs []*models.EmergencyContact
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list emergency logs", err)
	}
	return logs, nil
}

// Reporting

func (s *DatabaseStore) count(db *gorm.DB, model interface{}, dst *int64) error {
	return db.Model(model).Count(dst).Error
}

func (s *DatabaseStore) TableCounts(ctx context.Context) (*models.TableCounts, error) {
	db := s.db.WithContext(ctx)
	counts := &models.TableCounts{}
	for _, c := range []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Patient{}, &counts.Patients},
		{&models.Appointment{}, &counts.Appointments},
		{&models.Doctor{}, &counts.Doctors},
		{&models.Service{}, &counts.Services},
		{&models.HealthQuery{}, &counts.HealthQueries},
		{&models.EmergencyContact{}, &counts.EmergencyContacts},
	} {
		if err := s.count(db, c.model, c.dst); err != nil {
			return nil, apperrors.NewInternalError("failed to count rows", err)
		}
	}
	return counts, nil
}

func (s *DatabaseStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	counts, err := s.TableCounts(ctx)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{
		TotalPatients:     counts.Patients,
		TotalAppointments: counts.Appointments,
		TotalDoctors:      counts.Doctors,
		HealthQueries:     counts.HealthQueries,
		EmergencyLogs:     counts.EmergencyContacts,
	}
	if err := db.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusPending).Count(&stats.PendingAppointments).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to count pending appointments", err)
	}
	if err := db.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusConfirmed).Count(&stats.ConfirmedAppointments).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to count confirmed appointments", err)
	}
	if err := db.Model(&models.Doctor{}).Where("status = ?", models.DoctorStatusActive).Count(&stats.ActiveDoctors).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to count active doctors", err)
	}
	return stats, nil
}

func (s *DatabaseStore) MonthlyAppointments(ctx context.Context, months int) ([]models.MonthlyAppointments, error) {
	var rows []models.MonthlyAppointments
	err := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count, " +
			"SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END) AS confirmed").
		Group("month").
		Order("month DESC").
		Limit(months).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate monthly appointments", err)
	}
	return rows, nil
}

func (s *DatabaseStore) TopHospitals(ctx context.Context, limit int) ([]models.HospitalCount, error) {
	var rows []models.HospitalCount
	err := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("hospital_name, COUNT(*) AS appointments").
		Group("hospital_name").
		Order("appointments DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate hospitals", err)
	}
	return rows, nil
}

func (s *DatabaseStore) CommonSymptoms(ctx context.Context, limit int) ([]models.SymptomCount, error) {
	var rows []models.SymptomCount
	err := s.db.WithContext(ctx).
		Model(&models.HealthQuery{}).
		Select("symptoms, COUNT(*) AS count").
		Where("symptoms IS NOT NULL AND symptoms <> ''").
		Group("symptoms").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate symptoms", err)
	}
	return rows, nil
}

// prepareAppointment applies defaults and validates before insert.
func prepareAppointment(a *models.Appointment) error {
	if a.HospitalName == "" || a.Slot == "" {
		return apperrors.NewValidationError("hospital name and slot are required")
	}
	if a.Status == "" {
		a.Status = models.AppointmentStatusPending
	}
	if a.Priority == "" {
		a.Priority = models.PriorityNormal
	}
	if err := models.ValidateAppointmentStatus(a.Status); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func emergencyRecords(b EmergencyBooking) (*models.Patient, *models.Appointment, error) {
	if b.PatientName == "" || b.HospitalName == "" {
		return nil, nil, apperrors.NewValidationError("patient and hospital are required")
	}
	phone := b.PatientPhone
	if phone == "" {
		phone = models.PhoneEmergencyUser
	}
	slot := b.Slot
	if slot == "" {
		slot = time.Now().Add(time.Hour).Format(models.SlotLayout)
	}
	patient := &models.Patient{Name: b.PatientName, Pincode: b.Pincode, Phone: phone}
	appointment := &models.Appointment{
		HospitalName: b.HospitalName,
		HospitalType: "Emergency",
		Slot:         slot,
		Pincode:      b.Pincode,
		MapsLink:     b.MapsLink,
		Priority:     models.PriorityEmergency,
		Status:       models.AppointmentStatusConfirmed,
	}
	return patient, appointment, nil
}

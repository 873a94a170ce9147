package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
	"github.com/sehatsaathi/sehat-backend/internal/models"
)

// MemoryStore holds all data in memory for local runs and tests
type MemoryStore struct {
	patients      map[uint]*models.Patient
	appointments  map[uint]*models.Appointment
	doctors       map[uint]*models.Doctor
	services      map[uint]*models.Service
	healthQueries []*models.HealthQuery
	emergencyLogs []*models.EmergencyContact

	// One lock; the emergency booking touches two tables at once
	mu sync.RWMutex

	// Counters for ID generation
	patientCounter     uint
	appointmentCounter uint
	doctorCounter      uint
	serviceCounter     uint
	queryCounter       uint
	emergencyCounter   uint

	now func() time.Time
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:     make(map[uint]*models.Patient),
		appointments: make(map[uint]*models.Appointment),
		doctors:      make(map[uint]*models.Doctor),
		services:     make(map[uint]*models.Service),
		now:          time.Now,
	}
}

// Patient operations
func (m *MemoryStore) CreatePatient(_ context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.Name == "" {
		return nil, apperrors.NewValidationError("patient name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertPatient(patient)
	return patient, nil
}

func (m *MemoryStore) insertPatient(patient *models.Patient) {
	m.patientCounter++
	patient.ID = m.patientCounter
	patient.CreatedAt = m.now()
	cp := *patient
	m.patients[patient.ID] = &cp
}

func (m *MemoryStore) GetPatient(_ context.Context, id uint) (*models.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	patient, exists := m.patients[id]
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient %d not found", id))
	}
	cp := *patient
	return &cp, nil
}

func (m *MemoryStore) ListPatients(ctx context.Context) ([]*models.Patient, error) {
	return m.RecentPatients(ctx, -1)
}

func (m *MemoryStore) RecentPatients(_ context.Context, limit int) ([]*models.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	patients := make([]*models.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		cp := *p
		patients = append(patients, &cp)
	}
	// Newest first; IDs are monotonic so they break timestamp ties
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID > patients[j].ID })
	return truncate(patients, limit), nil
}

// Appointment operations
func (m *MemoryStore) CreateAppointment(_ context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := prepareAppointment(appointment); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertAppointment(appointment)
	return appointment, nil
}

func (m *MemoryStore) insertAppointment(appointment *models.Appointment) {
	m.appointmentCounter++
	appointment.ID = m.appointmentCounter
	appointment.CreatedAt = m.now()
	cp := *appointment
	cp.PatientName, cp.PatientPhone = "", ""
	m.appointments[appointment.ID] = &cp
}

func (m *MemoryStore) CreateEmergencyAppointment(_ context.Context, booking EmergencyBooking) (*models.Appointment, error) {
	patient, appointment, err := emergencyRecords(booking)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertPatient(patient)
	appointment.PatientID = patient.ID
	m.insertAppointment(appointment)
	return appointment, nil
}

// joined copies an appointment and fills the patient columns. Caller holds mu.
func (m *MemoryStore) joined(a *models.Appointment) *models.Appointment {
	cp := *a
	if p, ok := m.patients[a.PatientID]; ok {
		cp.PatientName = p.Name
		cp.PatientPhone = p.Phone
	}
	return &cp
}

func (m *MemoryStore) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	return m.joined(appointment), nil
}

func (m *MemoryStore) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return m.RecentAppointments(ctx, -1)
}

func (m *MemoryStore) RecentAppointments(_ context.Context, limit int) ([]*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	appointments := make([]*models.Appointment, 0, len(m.appointments))
	for _, a := range m.appointments {
		appointments = append(appointments, m.joined(a))
	}
	sort.Slice(appointments, func(i, j int) bool { return appointments[i].ID > appointments[j].ID })
	return truncate(appointments, limit), nil
}

func (m *MemoryStore) UpdateAppointmentStatus(_ context.Context, id uint, status, approvedBy string) error {
	if err := models.ValidateAppointmentStatus(status); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	appointment.Status = status
	if approvedBy != "" {
		now := m.now()
		appointment.ApprovedBy = approvedBy
		appointment.ApprovedAt = &now
	}
	return nil
}

func (m *MemoryStore) DeleteAppointment(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.appointments[id]; !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	delete(m.appointments, id)
	return nil
}

func (m *MemoryStore) ListAppointmentsDueForReminder(_ context.Context, from, to time.Time) ([]*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*models.Appointment
	for _, a := range m.appointments {
		if a.Status != models.AppointmentStatusConfirmed || a.ReminderSentAt != nil {
			continue
		}
		if slotBetween(a.Slot, from, to) {
			due = append(due, m.joined(a))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Slot < due[j].Slot })
	return due, nil
}

func (m *MemoryStore) MarkReminderSent(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	appointment.ReminderSentAt = &at
	return nil
}

// Doctor and service catalog
func (m *MemoryStore) ListActiveDoctors(ctx context.Context) ([]*models.Doctor, error) {
	all, _ := m.ListDoctors(ctx)
	active := make([]*models.Doctor, 0, len(all))
	for _, d := range all {
		if d.Status == models.DoctorStatusActive {
			active = append(active, d)
		}
	}
	return active, nil
}

func (m *MemoryStore) ListDoctors(_ context.Context) ([]*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doctors := make([]*models.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		cp := *d
		doctors = append(doctors, &cp)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].ID < doctors[j].ID })
	return doctors, nil
}

func (m *MemoryStore) GetDoctor(_ context.Context, id uint) (*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doctor, exists := m.doctors[id]
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor %d not found", id))
	}
	cp := *doctor
	return &cp, nil
}

func (m *MemoryStore) UpdateDoctorStatus(_ context.Context, id uint, status string) error {
	if status != models.DoctorStatusActive && status != models.DoctorStatusInactive {
		return apperrors.NewValidationError(fmt.Sprintf("invalid doctor status %q", status))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doctor, exists := m.doctors[id]
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor %d not found", id))
	}
	doctor.Status = status
	return nil
}

func (m *MemoryStore) ListServices(_ context.Context) ([]*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	services := make([]*models.Service, 0, len(m.services))
	for _, s := range m.services {
		cp := *s
		services = append(services, &cp)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

func (m *MemoryStore) SeedDefaults(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.doctors) == 0 {
		for _, d := range models.DefaultDoctors() {
			d := d
			m.doctorCounter++
			d.ID = m.doctorCounter
			d.CreatedAt = m.now()
			m.doctors[d.ID] = &d
		}
	}
	if len(m.services) == 0 {
		for _, s := range models.DefaultServices() {
			s := s
			m.serviceCounter++
			s.ID = m.serviceCounter
			s.CreatedAt = m.now()
			m.services[s.ID] = &s
		}
	}
	return nil
}

// Append-only logs
func (m *MemoryStore) SaveHealthQuery(_ context.Context, query *models.HealthQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if query.Severity == "" {
		query.Severity = models.SeverityLow
	}
	m.queryCounter++
	query.ID = m.queryCounter
	query.CreatedAt = m.now()
	cp := *query
	m.healthQueries = append(m.healthQueries, &cp)
	return nil
}

func (m *MemoryStore) ListHealthQueries(_ context.Context) ([]*models.HealthQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.HealthQuery, 0, len(m.healthQueries))
	for i := len(m.healthQueries) - 1; i >= 0; i-- {
		cp := *m.healthQueries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) LogEmergencyContact(_ context.Context, entry *models.EmergencyContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emergencyCounter++
	entry.ID = m.emergencyCounter
	entry.CreatedAt = m.now()
	cp := *entry
	m.emergencyLogs = append(m.emergencyLogs, &cp)
	return nil
}

func (m *MemoryStore) ListEmergencyLogs(_ context.Context) ([]*models.EmergencyContact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.EmergencyContact, 0, len(m.emergencyLogs))
	for i := len(m.emergencyLogs) - 1; i >= 0; i-- {
		cp := *m.emergencyLogs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Reporting
func (m *MemoryStore) TableCounts(_ context.Context) (*models.TableCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &models.TableCounts{
		Patients:          int64(len(m.patients)),
		Appointments:      int64(len(m.appointments)),
		Doctors:           int64(len(m.doctors)),
		Services:          int64(len(m.services)),
		HealthQueries:     int64(len(m.healthQueries)),
		EmergencyContacts: int64(len(m.emergencyLogs)),
	}, nil
}

func (m *MemoryStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	counts, _ := m.TableCounts(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.DashboardStats{
		TotalPatients:     counts.Patients,
		TotalAppointments: counts.Appointments,
		TotalDoctors:      counts.Doctors,
		HealthQueries:     counts.HealthQueries,
		EmergencyLogs:     counts.EmergencyContacts,
	}
	for _, a := range m.appointments {
		switch a.Status {
		case models.AppointmentStatusPending:
			stats.PendingAppointments++
		case models.AppointmentStatusConfirmed:
			stats.ConfirmedAppointments++
		}
	}
	for _, d := range m.doctors {
		if d.Status == models.DoctorStatusActive {
			stats.ActiveDoctors++
		}
	}
	return stats, nil
}

func (m *MemoryStore) MonthlyAppointments(_ context.Context, months int) ([]models.MonthlyAppointments, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMonth := make(map[string]*models.MonthlyAppointments)
	for _, a := range m.appointments {
		key := a.CreatedAt.Format("2006-01")
		row, ok := byMonth[key]
		if !ok {
			row = &models.MonthlyAppointments{Month: key}
			byMonth[key] = row
		}
		row.Count++
		if a.Status == models.AppointmentStatusConfirmed {
			row.Confirmed++
		}
	}

	rows := make([]models.MonthlyAppointments, 0, len(byMonth))
	for _, r := range byMonth {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month > rows[j].Month })
	return truncate(rows, months), nil
}

func (m *MemoryStore) TopHospitals(_ context.Context, limit int) ([]models.HospitalCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, a := range m.appointments {
		counts[a.HospitalName]++
	}
	rows := make([]models.HospitalCount, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, models.HospitalCount{HospitalName: name, Appointments: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Appointments != rows[j].Appointments {
			return rows[i].Appointments > rows[j].Appointments
		}
		return rows[i].HospitalName < rows[j].HospitalName
	})
	return truncate(rows, limit), nil
}

func (m *MemoryStore) CommonSymptoms(_ context.Context, limit int) ([]models.SymptomCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, q := range m.healthQueries {
		if q.Symptoms != "" {
			counts[q.Symptoms]++
		}
	}
	rows := make([]models.SymptomCount, 0, len(counts))
	for s, n := range counts {
		rows = append(rows, models.SymptomCount{Symptoms: s, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Symptoms < rows[j].Symptoms
	})
	return truncate(rows, limit), nil
}

// truncate applies a SQL-style limit; negative means no limit.
func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

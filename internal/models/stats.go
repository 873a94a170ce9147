package models

// TableCounts holds row counts per table
type TableCounts struct {
	Patients          int64 `json:"patients"`
	Appointments      int64 `json:"appointments"`
	Doctors           int64 `json:"doctors"`
	Services          int64 `json:"services"`
	HealthQueries     int64 `json:"health_queries"`
	EmergencyContacts int64 `json:"emergency_contacts"`
}

// DashboardStats feeds the admin dashboard
type DashboardStats struct {
	TotalPatients         int64 `json:"total_patients"`
	TotalAppointments     int64 `json:"total_appointments"`
	PendingAppointments   int64 `json:"pending_appointments"`
	ConfirmedAppointments int64 `json:"confirmed_appointments"`
	TotalDoctors          int64 `json:"total_doctors"`
	ActiveDoctors         int64 `json:"active_doctors"`
	HealthQueries         int64 `json:"health_queries"`
	EmergencyLogs         int64 `json:"emergency_logs"`
}

type MonthlyAppointments struct {
	Month     string `json:"month"`
	Count     int64  `json:"count"`
	Confirmed int64  `json:"confirmed"`
}

type HospitalCount struct {
	HospitalName string `json:"hospital_name"`
	Appointments int64  `json:"appointments"`
}

type SymptomCount struct {
	Symptoms string `json:"symptoms"`
	Count    int64  `json:"count"`
}

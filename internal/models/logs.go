package models

import "time"

// HealthQuery is an append-only record of advice given for a symptom text
type HealthQuery struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PatientPhone string    `json:"patient_phone"`
	Symptoms     string    `json:"symptoms"`
	AIResponse   string    `json:"ai_response"`
	Severity     string    `json:"severity" gorm:"default:low"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmergencyContact is an append-only log of emergency actions taken
type EmergencyContact struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PatientPhone  string    `json:"patient_phone"`
	EmergencyType string    `json:"emergency_type"`
	Pincode       string    `json:"pincode"`
	ActionTaken   string    `json:"action_taken"`
	CreatedAt     time.Time `json:"created_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

const (
	SeverityLow  = "low"
	SeverityHigh = "high"
)

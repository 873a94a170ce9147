package models

import (
	"fmt"
	"time"
)

// Appointment references a patient and a facility picked from the nearby search
type Appointment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	PatientID    uint   `json:"patient_id" gorm:"index"`
	HospitalName string `json:"hospital_name" gorm:"not null"`
	HospitalType string `json:"hospital_type"`
	Slot         string `json:"slot" gorm:"not null"` // "2006-01-02 15:04"
	Status       string `json:"status" gorm:"default:pending;index"`
	Priority     string `json:"priority" gorm:"default:normal"`
	Symptoms     string `json:"symptoms"`
	Pincode      string `json:"pincode"`
	MapsLink     string `json:"maps_link"`

	CreatedAt      time.Time  `json:"created_at"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	// Filled by joined reads only
	PatientName  string `json:"patient_name,omitempty" gorm:"->;-:migration"`
	PatientPhone string `json:"patient_phone,omitempty" gorm:"->;-:migration"`
}

// Appointment status and priority values
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusRejected  = "rejected"
	AppointmentStatusEmergency = "emergency"

	PriorityNormal    = "normal"
	PriorityEmergency = "emergency"

	SlotLayout = "2006-01-02 15:04"
)

// ValidateAppointmentStatus rejects anything outside the closed status set.
func ValidateAppointmentStatus(status string) error {
	switch status {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusRejected, AppointmentStatusEmergency:
		return nil
	}
	return fmt.Errorf("invalid appointment status %q", status)
}

// AppointmentAction maps admin action keywords to target statuses. Delete is
// handled separately.
func AppointmentAction(action string) (status string, ok bool) {
	switch action {
	case "accept":
		return AppointmentStatusConfirmed, true
	case "reject":
		return AppointmentStatusRejected, true
	}
	return "", false
}

package models

import "time"

// Patient is created by the booking and emergency flows and never updated.
type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Age       *int      `json:"age"`
	Gender    string    `json:"gender"`
	Phone     string    `json:"phone" gorm:"index"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
}

// Phone placeholders used when the channel has no real number.
const (
	PhoneWebUser       = "web_user"
	PhoneEmergencyUser = "emergency_user"
)

// HasRealPhone reports whether a message can be delivered to the patient.
func HasRealPhone(phone string) bool {
	return phone != "" && phone != PhoneWebUser && phone != PhoneEmergencyUser
}

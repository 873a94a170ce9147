package models

import "time"

// Service is a static catalog entry
type Service struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Duration    string    `json:"duration"`
	Status      string    `json:"status" gorm:"default:active"`
	CreatedAt   time.Time `json:"created_at"`
}

func DefaultServices() []Service {
	return []Service{
		{Name: "General Checkup", Description: "Basic health examination", Price: "Free", Duration: "30 minutes", Status: "active"},
		{Name: "Tele-Consultation", Description: "Online doctor consultation", Price: "₹50", Duration: "20 minutes", Status: "active"},
		{Name: "Emergency Care", Description: "24/7 emergency medical care", Price: "₹100", Duration: "Immediate", Status: "active"},
		{Name: "Health Screening", Description: "Comprehensive health checkup", Price: "₹500", Duration: "2 hours", Status: "active"},
	}
}

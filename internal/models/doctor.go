package models

import (
	"strings"
	"time"
)

// Doctor is a tele-consultation directory entry
type Doctor struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null"`
	Specialization  string    `json:"specialization" gorm:"not null"`
	Fee             string    `json:"fee"`
	Contact         string    `json:"contact"`
	OnlineLink      string    `json:"online_link"`
	Languages       string    `json:"languages"` // comma separated
	Status          string    `json:"status" gorm:"default:active"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	DoctorStatusActive   = "active"
	DoctorStatusInactive = "inactive"
)

// LanguageList splits the stored comma separated languages.
func (d *Doctor) LanguageList() []string {
	var out []string
	for _, l := range strings.Split(d.Languages, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// DefaultDoctors is the directory seeded into an empty table.
func DefaultDoctors() []Doctor {
	return []Doctor{
		{Name: "Dr. Ravi Sharma", Specialization: "General Physician", Fee: "Free", Contact: "+919876543210",
			OnlineLink: "https://wa.me/919876543210", Languages: "Hindi,English", Status: DoctorStatusActive, ExperienceYears: 10, Rating: 4.5},
		{Name: "Dr. Priya Mehta", Specialization: "Pediatrics", Fee: "₹50", Contact: "+919812345678",
			OnlineLink: "https://wa.me/919812345678", Languages: "Hindi,English", Status: DoctorStatusActive, ExperienceYears: 8, Rating: 4.7},
		{Name: "Dr. Amit Kumar", Specialization: "Cardiology", Fee: "₹200", Contact: "+919887766554",
			OnlineLink: "https://wa.me/919887766554", Languages: "Hindi,English", Status: DoctorStatusActive, ExperienceYears: 15, Rating: 4.8},
		{Name: "Dr. Sunita Patel", Specialization: "Dermatology", Fee: "₹150", Contact: "+919776655443",
			OnlineLink: "https://wa.me/919776655443", Languages: "Hindi,English,Gujarati", Status: DoctorStatusActive, ExperienceYears: 12, Rating: 4.6},
	}
}

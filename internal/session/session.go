// Package session keeps per-conversation state between chat messages.
package session

import (
	"context"
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/geo"
	"github.com/sehatsaathi/sehat-backend/internal/models"
)

const (
	// InitialState is the state of a session that has never been seen.
	InitialState = "main_menu"

	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// maxHistoryLines keeps the last three user/assistant exchanges.
	maxHistoryLines = 6
)

// Session is the conversational context of one user
type Session struct {
	ID               string          `json:"id"`
	State            string          `json:"state"`
	Pincode          string          `json:"pincode,omitempty"`
	Hospitals        []geo.Facility  `json:"hospitals,omitempty"`
	SelectedHospital *geo.Facility   `json:"selected_hospital,omitempty"`
	Slots            []string        `json:"slots,omitempty"`
	SelectedSlot     string          `json:"selected_slot,omitempty"`
	Doctors          []models.Doctor `json:"doctors,omitempty"`
	History          []string        `json:"history,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// New returns a fresh session in the initial state.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		State:     InitialState,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset returns the session to the main menu and forgets the transient
// booking context. History and Phone survive.
func (s *Session) Reset() {
	s.State = InitialState
	s.Pincode = ""
	s.Hospitals = nil
	s.SelectedHospital = nil
	s.Slots = nil
	s.SelectedSlot = ""
	s.Doctors = nil
}

// AppendHistory records one exchange and trims to the last three.
func (s *Session) AppendHistory(userMessage, reply string) {
	s.History = append(s.History, "User: "+userMessage, "Assistant: "+reply)
	if len(s.History) > maxHistoryLines {
		s.History = append([]string(nil), s.History[len(s.History)-maxHistoryLines:]...)
	}
}

// Clone returns a deep copy so stored sessions never alias caller state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Hospitals = append([]geo.Facility(nil), s.Hospitals...)
	cp.Slots = append([]string(nil), s.Slots...)
	cp.Doctors = append([]models.Doctor(nil), s.Doctors...)
	cp.History = append([]string(nil), s.History...)
	if s.SelectedHospital != nil {
		h := *s.SelectedHospital
		cp.SelectedHospital = &h
	}
	return &cp
}

// Store persists sessions. Get never fails for an unknown id; it returns a
// fresh session instead.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) int
}

// Package chat implements the Sehat Saathi conversation: a finite state
// machine over classified user input with lookups and bookings as side
// effects.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/advice"
	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
	"github.com/sehatsaathi/sehat-backend/internal/geo"
	"github.com/sehatsaathi/sehat-backend/internal/models"
	"github.com/sehatsaathi/sehat-backend/internal/session"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

// Locator finds facilities near a pincode.
type Locator interface {
	FindNearby(ctx context.Context, pincode string) ([]geo.Facility, error)
}

// Adviser answers symptom descriptions. It never fails.
type Adviser interface {
	Advise(ctx context.Context, symptoms string, history []string) string
}

// Notifier delivers a message to a phone number.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// turn is one message being handled.
type turn struct {
	sess *session.Session
	in   Input
}

func (t *turn) moveTo(s State) {
	t.sess.State = string(s)
}

type handler func(ctx context.Context, t *turn) (string, error)

// Engine drives conversations.
type Engine struct {
	store    storage.Store
	sessions session.Store
	locator  Locator
	adviser  Adviser
	notifier Notifier
	now      func() time.Time

	handlers map[State]handler
}

// NewEngine wires an engine. notifier may be nil.
func NewEngine(store storage.Store, sessions session.Store, locator Locator, adviser Adviser, notifier Notifier) *Engine {
	e := &Engine{
		store:    store,
		sessions: sessions,
		locator:  locator,
		adviser:  adviser,
		notifier: notifier,
		now:      time.Now,
	}
	e.handlers = map[State]handler{
		StateMainMenu:                      e.mainMenu,
		StateEmergencyHelp:                 e.emergencyHelp,
		StateAwaitingPincodeForEmergency:   e.emergencyNearbyPincode,
		StateEmergencyServicesShown:        e.emergencyServicesShown,
		StateEmergencyAppointPincode:       e.emergencyAppointPincode,
		StateEmergencyHospitalSelect:       e.emergencyHospitalSelect,
		StateEmergencyPatientName:          e.emergencyPatientName,
		StateGeneralQuery:                  e.generalQuery,
		StateAwaitingPincodeForAppointment: e.appointmentPincode,
		StateHospitalsShown:                e.hospitalsShown,
		StateHospitalsShownForAppointment:  e.hospitalSelect,
		StateSelectSlot:                    e.slotSelect,
		StateGetPatientName:                e.patientName,
		StateTeleSelect:                    e.teleSelect,
		StateAwaitingPincodeForHospital:    e.hospitalSearchPincode,
	}
	return e
}

// Reply handles one web message.
func (e *Engine) Reply(ctx context.Context, sessionID, text string) (string, error) {
	return e.ReplyFrom(ctx, sessionID, "", text)
}

// ReplyFrom handles one message from a channel that knows the sender's phone
// number. The phone is remembered on the session for notifications.
func (e *Engine) ReplyFrom(ctx context.Context, sessionID, phone, text string) (string, error) {
	in := Classify(text)
	if in.Kind == KindEmpty {
		return EmptyMessageText, nil
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", apperrors.NewInternalError("failed to load session", err)
	}
	if phone != "" {
		sess.Phone = phone
	}

	log.Debug().Str("session_id", sessionID).Str("state", sess.State).Str("input", in.Kind.String()).Msg("💬 Chat message")

	reply, err := e.dispatch(ctx, &turn{sess: sess, in: in})
	if err != nil {
		return "", err
	}

	if err := e.sessions.Put(ctx, sess); err != nil {
		return "", apperrors.NewInternalError("failed to save session", err)
	}
	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind == KindReset {
		t.sess.Reset()
		return MainMenuText, nil
	}

	h, ok := e.handlers[State(t.sess.State)]
	if !ok {
		log.Warn().Str("session_id", t.sess.ID).Str("state", t.sess.State).Msg("⚠️ Unknown session state, resetting")
		t.sess.Reset()
		return MainMenuText, nil
	}
	return h(ctx, t)
}

// lookupFailure turns a typed lookup error into a user-facing reply. It
// returns ok=false for errors the boundary must handle.
func lookupFailure(err error) (reply string, ok bool) {
	switch {
	case errors.Is(err, geo.ErrUnknownPincode):
		return locationNotFoundText, true
	case apperrors.Is(err, apperrors.ErrorTypeNotFound):
		return noHospitalsFoundText, true
	case apperrors.Is(err, apperrors.ErrorTypeExternal):
		return searchUnavailableText, true
	}
	return "", false
}

// findNearby runs a lookup and reports either facilities or a reply to show
// with the state left unchanged.
func (e *Engine) findNearby(ctx context.Context, pincode string) ([]geo.Facility, string, error) {
	hospitals, err := e.locator.FindNearby(ctx, pincode)
	if err == nil {
		return hospitals, "", nil
	}
	if reply, ok := lookupFailure(err); ok {
		log.Warn().Err(err).Str("pincode", pincode).Msg("⚠️ Hospital lookup failed")
		return nil, reply, nil
	}
	return nil, "", err
}

func (e *Engine) phoneOr(sess *session.Session, fallback string) string {
	if sess.Phone != "" {
		return sess.Phone
	}
	return fallback
}

func (e *Engine) notify(ctx context.Context, phone, body string) {
	if e.notifier == nil || !models.HasRealPhone(phone) {
		return
	}
	if err := e.notifier.Send(ctx, phone, body); err != nil {
		log.Error().Err(err).Str("to", phone).Msg("❌ Failed to send WhatsApp notification")
	}
}

// Main menu

func (e *Engine) mainMenu(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind == KindGreeting {
		return MainMenuText, nil
	}
	if t.in.Kind != KindNumber {
		return invalidOptionText, nil
	}

	switch t.in.Number {
	case 1:
		t.moveTo(StateEmergencyHelp)
		return emergencyMenuText, nil
	case 2:
		t.moveTo(StateGeneralQuery)
		return healthQueryPrompt, nil
	case 3:
		t.moveTo(StateAwaitingPincodeForAppointment)
		return appointmentPincodePrompt, nil
	case 4:
		t.moveTo(StateAwaitingPincodeForHospital)
		return hospitalPincodePrompt, nil
	case 5:
		return e.listDoctors(ctx, t)
	}
	return invalidOptionText, nil
}

// Emergency flow

func (e *Engine) emergencyHelp(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind == KindKeyword {
		switch t.in.Text {
		case KeywordNearby:
			t.moveTo(StateAwaitingPincodeForEmergency)
			return emergencyNearbyPrompt, nil
		case KeywordAppoint:
			t.moveTo(StateEmergencyAppointPincode)
			return emergencyAppointPrompt, nil
		}
	}

	if t.in.Kind == KindText {
		for _, ins := range emergencyInstructions {
			for _, kw := range ins.keywords {
				if strings.Contains(t.in.Text, kw) {
					e.logEmergency(ctx, t.sess, ins.kind, "", "first aid steps shown")
					return instructionsText(ins.steps), nil
				}
			}
		}
	}
	return emergencyContactsText(), nil
}

func (e *Engine) emergencyNearbyPincode(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind != KindPincode {
		return emergencyPincodeReprompt, nil
	}
	hospitals, failure, err := e.findNearby(ctx, t.in.Text)
	if err != nil || failure != "" {
		return failure, err
	}

	t.sess.Hospitals = hospitals
	t.sess.Pincode = t.in.Text
	t.moveTo(StateEmergencyServicesShown)
	return emergencyServicesText(t.in.Text, hospitals), nil
}

func (e *Engine) emergencyServicesShown(_ context.Context, t *turn) (string, error) {
	if t.in.Kind == KindKeyword && t.in.Text == KeywordAppoint {
		if len(t.sess.Hospitals) == 0 {
			return noEmergencyHospitalsText, nil
		}
		t.moveTo(StateEmergencyHospitalSelect)
		return emergencyHospitalChoiceText("🚨 *EMERGENCY APPOINTMENT*", t.sess.Hospitals), nil
	}
	return emergencyServicesOptions, nil
}

func (e *Engine) emergencyAppointPincode(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind != KindPincode {
		return validPincodeText, nil
	}
	hospitals, failure, err := e.findNearby(ctx, t.in.Text)
	if err != nil || failure != "" {
		return failure, err
	}

	t.sess.Pincode = t.in.Text
	t.sess.Hospitals = hospitals
	t.moveTo(StateEmergencyHospitalSelect)
	return emergencyHospitalChoiceText(fmt.Sprintf("🚨 *EMERGENCY HOSPITALS near %s:*", t.in.Text), hospitals), nil
}

func (e *Engine) emergencyHospitalSelect(_ context.Context, t *turn) (string, error) {
	h, reply := pick(t.in, t.sess.Hospitals, invalidHospitalText)
	if h == nil {
		return reply, nil
	}
	t.sess.SelectedHospital = h
	t.moveTo(StateEmergencyPatientName)
	return emergencyHospitalSelectedText(*h), nil
}

func (e *Engine) emergencyPatientName(ctx context.Context, t *turn) (string, error) {
	name := t.in.Raw
	if name == "" || t.sess.SelectedHospital == nil {
		t.sess.Reset()
		return MainMenuText, nil
	}
	hospital := *t.sess.SelectedHospital
	pincode := t.sess.Pincode
	phone := t.sess.Phone

	// Transient booking context is cleared whatever the outcome
	t.sess.Reset()

	appt, err := e.store.CreateEmergencyAppointment(ctx, storage.EmergencyBooking{
		PatientName:  name,
		PatientPhone: phone,
		HospitalName: hospital.Name,
		Pincode:      pincode,
		MapsLink:     hospital.MapsLink,
		Slot:         EmergencySlot(e.now()),
	})
	if err != nil {
		log.Error().Err(err).Str("hospital", hospital.Name).Msg("❌ Emergency appointment failed")
		return emergencyBookingFailedTxt, nil
	}

	e.logEmergency(ctx, t.sess, "emergency_appointment", pincode, fmt.Sprintf("Appointment %d created", appt.ID))
	e.notify(ctx, phone, EmergencyBookedMessage(appt.ID, name, hospital.Name, hospital.MapsLink))
	return emergencyConfirmedText(appt.ID, name, pincode, hospital), nil
}

func (e *Engine) logEmergency(ctx context.Context, sess *session.Session, kind, pincode, action string) {
	entry := &models.EmergencyContact{
		PatientPhone:  e.phoneOr(sess, models.PhoneWebUser),
		EmergencyType: kind,
		Pincode:       pincode,
		ActionTaken:   action,
	}
	if err := e.store.LogEmergencyContact(ctx, entry); err != nil {
		log.Error().Err(err).Str("type", kind).Msg("❌ Failed to log emergency contact")
	}
}

// Health query

var followUpStopWords = []string{"menu", "back", "stop"}

func mentionsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func (e *Engine) generalQuery(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind == KindNumber && t.in.Number == 4 {
		t.moveTo(StateAwaitingPincodeForHospital)
		return hospitalPincodePrompt, nil
	}

	reply := e.adviser.Advise(ctx, t.in.Raw, t.sess.History)
	if !mentionsAny(t.in.Text, followUpStopWords) {
		reply += healthFollowUp
	}
	t.sess.AppendHistory(t.in.Raw, reply)

	query := &models.HealthQuery{
		PatientPhone: e.phoneOr(t.sess, models.PhoneWebUser),
		Symptoms:     t.in.Raw,
		AIResponse:   reply,
		Severity:     advice.Severity(t.in.Raw),
	}
	if err := e.store.SaveHealthQuery(ctx, query); err != nil {
		log.Error().Err(err).Msg("❌ Failed to save health query")
	}
	return reply, nil
}

// Appointment booking

func (e *Engine) appointmentPincode(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind != KindPincode {
		return validPincodeText, nil
	}
	hospitals, failure, err := e.findNearby(ctx, t.in.Text)
	if err != nil || failure != "" {
		return failure, err
	}

	t.sess.Hospitals = hospitals
	t.sess.Pincode = t.in.Text
	t.moveTo(StateHospitalsShown)
	return hospitalListText(t.in.Text, hospitals), nil
}

func (e *Engine) hospitalsShown(_ context.Context, t *turn) (string, error) {
	if t.in.Kind == KindKeyword && t.in.Text == KeywordAppoint {
		if len(t.sess.Hospitals) == 0 {
			return noBookingHospitalsText, nil
		}
		t.moveTo(StateHospitalsShownForAppointment)
		return fmt.Sprintf("👉 Select hospital number (1-%d):", len(t.sess.Hospitals)), nil
	}
	return hospitalsShownOptions, nil
}

func (e *Engine) hospitalSelect(_ context.Context, t *turn) (string, error) {
	h, reply := pick(t.in, t.sess.Hospitals, invalidHospitalText)
	if h == nil {
		return reply, nil
	}

	slots := AvailableSlots(e.now())
	if len(slots) == 0 {
		t.sess.Reset()
		return noSlotsText, nil
	}

	t.sess.SelectedHospital = h
	t.sess.Slots = slots
	t.moveTo(StateSelectSlot)
	return slotChoiceText(*h, slots), nil
}

func (e *Engine) slotSelect(_ context.Context, t *turn) (string, error) {
	slot, reply := pick(t.in, t.sess.Slots, invalidSlotText)
	if slot == nil {
		return reply, nil
	}

	var hospital geo.Facility
	if t.sess.SelectedHospital != nil {
		hospital = *t.sess.SelectedHospital
	}
	t.sess.SelectedSlot = *slot
	t.moveTo(StateGetPatientName)
	return appointmentSummaryText(hospital, *slot), nil
}

func (e *Engine) patientName(ctx context.Context, t *turn) (string, error) {
	name := t.in.Raw
	if name == "" {
		return validNameText, nil
	}
	if t.sess.SelectedHospital == nil || t.sess.SelectedSlot == "" {
		t.sess.Reset()
		return MainMenuText, nil
	}

	hospital := *t.sess.SelectedHospital
	slot := t.sess.SelectedSlot
	pincode := t.sess.Pincode
	phone := e.phoneOr(t.sess, models.PhoneWebUser)

	t.sess.Reset()

	patient, err := e.store.CreatePatient(ctx, &models.Patient{Name: name, Pincode: pincode, Phone: phone})
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to create patient")
		return bookingPatientFailedText, nil
	}

	appt, err := e.store.CreateAppointment(ctx, &models.Appointment{
		PatientID:    patient.ID,
		HospitalName: hospital.Name,
		HospitalType: hospital.Type,
		Slot:         slot,
		Pincode:      pincode,
		MapsLink:     hospital.MapsLink,
		Priority:     models.PriorityNormal,
		Status:       models.AppointmentStatusPending,
	})
	if err != nil {
		log.Error().Err(err).Uint("patient_id", patient.ID).Msg("❌ Failed to save appointment")
		return bookingSaveFailedText, nil
	}

	log.Info().Uint("appointment_id", appt.ID).Str("hospital", hospital.Name).Msg("🎉 Appointment booked")
	e.notify(ctx, phone, BookingReceivedMessage(appt.ID, name, hospital.Name, slot))
	return bookingConfirmedText(appt.ID, name, hospital, slot), nil
}

// Tele-consultation

func (e *Engine) listDoctors(ctx context.Context, t *turn) (string, error) {
	doctors, err := e.store.ListActiveDoctors(ctx)
	if err != nil {
		return "", err
	}
	if len(doctors) == 0 {
		return noDoctorsText, nil
	}

	t.sess.Doctors = make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		t.sess.Doctors = append(t.sess.Doctors, *d)
	}
	t.moveTo(StateTeleSelect)
	return doctorListText(t.sess.Doctors), nil
}

func (e *Engine) teleSelect(_ context.Context, t *turn) (string, error) {
	d, reply := pick(t.in, t.sess.Doctors, invalidDoctorText)
	if d == nil {
		return reply, nil
	}
	doctor := *d
	t.sess.Reset()
	return doctorCardText(doctor), nil
}

// Hospital search

func (e *Engine) hospitalSearchPincode(ctx context.Context, t *turn) (string, error) {
	if t.in.Kind != KindPincode {
		return validPincodeText, nil
	}
	hospitals, failure, err := e.findNearby(ctx, t.in.Text)
	if err != nil || failure != "" {
		return failure, err
	}

	t.moveTo(StateMainMenu)
	return hospitalListText(t.in.Text, hospitals), nil
}

// pick resolves a 1-based numeric selection. On failure it returns nil and the
// reply to show; nothing is mutated.
func pick[T any](in Input, items []T, invalid func(n int) string) (*T, string) {
	if !in.Numeric() {
		return nil, validNumberText
	}
	i := in.Number - 1
	if i < 0 || i >= len(items) {
		return nil, invalid(len(items))
	}
	item := items[i]
	return &item, ""
}

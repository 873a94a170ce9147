package chat

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sehatsaathi/sehat-backend/internal/geo"
	"github.com/sehatsaathi/sehat-backend/internal/models"
)

const (
	MainMenuText = `नमस्ते! मैं *Sehat Saathi* 🩺
Aapka AI Health Saathi!

1️⃣ 🚨 Emergency Help
2️⃣ 🩺 Health Query
3️⃣ 📅 Book Appointment
4️⃣ 🏥 Find Hospitals
5️⃣ 📞 Tele-Consultation

👉 Type number (1-5):`

	EmptyMessageText   = "❌ Empty message"
	InvalidRequestText = "❌ Invalid request"
	SystemErrorText    = "⚠️ System error. Please try again."

	invalidOptionText = "❌ Invalid option. Type 'menu' to see options."
	validNumberText   = "❌ Please enter a valid number"
	validPincodeText  = "⚠️ Please enter a valid 6-digit pincode"
	validNameText     = "❌ Please enter a valid name"

	emergencyMenuText = `🚨 *EMERGENCY HELP*

🔴 *IMMEDIATE ACTION REQUIRED:*
• 📞 Call 108 for Ambulance
• 📞 Call 102 for Medical Help
• 📞 Call 112 for Any Emergency

💡 *Quick Options:*
• Type 'nearby' to find emergency services
• Type 'appoint' for emergency appointment
• Type 'menu' for main menu

👉 Type your choice:`

	healthQueryPrompt         = "🩺 Please describe your health issue or symptoms:"
	appointmentPincodePrompt  = "📅 Please enter your 6-digit pincode to find nearby hospitals:"
	hospitalPincodePrompt     = "🏥 Please enter pincode to find nearby hospitals and clinics:"
	emergencyNearbyPrompt     = "📍 Please enter your 6-digit pincode to find nearby emergency services:"
	emergencyAppointPrompt    = "🚨 *EMERGENCY APPOINTMENT*\n📍 Please enter your pincode for immediate hospital booking:"
	emergencyPincodeReprompt  = "⚠️ Please enter a valid 6-digit pincode for emergency services"
	noDoctorsText             = "❌ No doctors available currently."
	noSlotsText               = "❌ No available slots. Please try again later."
	noEmergencyHospitalsText  = "❌ No hospitals available. Please enter pincode again."
	noBookingHospitalsText    = "❌ No hospitals available. Please enter pincode again using option 3."
	locationNotFoundText      = "❌ Location not found. Please check pincode."
	noHospitalsFoundText      = "❌ No hospitals found nearby. Try another pincode."
	searchUnavailableText     = "⚠️ Hospital search service is unavailable right now. Please try again in a few minutes."
	bookingPatientFailedText  = "❌ Error creating patient record. Please try again."
	bookingSaveFailedText     = "❌ Error saving appointment. Please try again."
	emergencyBookingFailedTxt = "❌ Error creating emergency appointment. Please call 108 directly."

	emergencyServicesOptions = `💡 *Options:*
• Type 'appoint' for emergency appointment
• Type 'menu' for main menu
• Or describe your emergency`

	hospitalsShownOptions = "💡 *Options:*\n• Type 'appoint' to book appointment\n• Type 'menu' for main menu\n• Or enter pincode again using option 3"

	healthFollowUp = "\n\n💡 You can ask more questions about this, type 'menu' for options, or describe other symptoms"

	emergencyActions = `🔴 *IMMEDIATE ACTION:*
• 📞 Call 108 for Ambulance
• 📞 Call 102 for Medical Help
• 📞 Call 112 for Any Emergency`
)

type emergencyContact struct {
	Number      string
	Description string
}

var emergencyContacts = []emergencyContact{
	{"108", "Emergency Ambulance Service"},
	{"102", "Medical Emergency Help"},
	{"112", "Single Emergency Number"},
	{"100", "Police Emergency"},
	{"101", "Fire Brigade"},
	{"1091", "Women Helpline"},
	{"1098", "Child Helpline"},
}

// First-aid steps keyed by a word the user may type in the emergency menu.
var emergencyInstructions = []struct {
	keywords []string
	kind     string
	steps    []string
}{
	{
		keywords: []string{"heart", "chest"},
		kind:     "heart_attack",
		steps: []string{
			"🚨 *Call Emergency Ambulance (108/102)* immediately!",
			"💊 If prescribed, give aspirin (unless allergic)",
			"🛌 Make person sit down and rest",
			"👕 Loosen tight clothing",
			"❌ Do not give anything to eat or drink",
			"⏱️ Note time when symptoms started",
			"🏥 Prepare to go to hospital immediately",
		},
	},
	{
		keywords: []string{"accident", "injury", "chot"},
		kind:     "accident",
		steps: []string{
			"🚨 *Call Emergency (108/112)* immediately!",
			"🔍 Check for danger to yourself and victim",
			"📞 Call for help from people nearby",
			"🩹 Do not move injured person unless in danger",
			"💧 If conscious, give sips of water",
			"🛡️ Stop bleeding with clean cloth",
			"🏥 Wait for ambulance arrival",
		},
	},
}

var titleCaser = cases.Title(language.English)

func km(d float64) string {
	return strconv.FormatFloat(d, 'f', 1, 64)
}

func emergencyContactsText() string {
	lines := make([]string, 0, len(emergencyContacts))
	for _, c := range emergencyContacts {
		lines = append(lines, fmt.Sprintf("• %s - %s", c.Number, c.Description))
	}
	return fmt.Sprintf(`🚨 *IMMEDIATE EMERGENCY CONTACTS:*

%s

💡 *Quick Options:*
• Type 'nearby' to find emergency services
• Type 'appoint' for emergency hospital appointment
• Type 'menu' for main menu

👉 Type your choice:`, strings.Join(lines, "\n"))
}

func instructionsText(steps []string) string {
	return "🆘 *FIRST AID STEPS:*\n\n" + strings.Join(steps, "\n") +
		"\n\n💡 Type 'nearby' to find emergency services or 'appoint' for emergency appointment"
}

func hospitalListText(pincode string, hospitals []geo.Facility) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏥 *Real Hospitals near %s:*\n\n", pincode)
	for i, h := range hospitals {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, h.Name)
		fmt.Fprintf(&b, "   🏷️ %s\n", titleCaser.String(h.Type))
		fmt.Fprintf(&b, "   📏 %s km away\n", km(h.DistanceKm))
		fmt.Fprintf(&b, "   🗺️ [Open in Maps](%s)\n\n", h.MapsLink)
	}
	b.WriteString("💡 *Click map links for exact locations*")
	return b.String()
}

func shortHospitalList(hospitals []geo.Facility) string {
	lines := make([]string, 0, len(hospitals))
	for i, h := range hospitals {
		lines = append(lines, fmt.Sprintf("%d. *%s* (%s km)", i+1, h.Name, km(h.DistanceKm)))
	}
	return strings.Join(lines, "\n")
}

func emergencyServicesText(pincode string, hospitals []geo.Facility) string {
	return fmt.Sprintf(`🚨 *EMERGENCY SERVICES near %s*

%s

%s

💡 *Quick Actions:*
• Type 'appoint' for emergency appointment
• Type 'menu' for main menu
• Describe your emergency`, pincode, hospitalListText(pincode, hospitals), emergencyActions)
}

func emergencyHospitalChoiceText(header string, hospitals []geo.Facility) string {
	return fmt.Sprintf("%s\n\n%s\n\n👉 *Select hospital number (1-%d) for emergency appointment:*",
		header, shortHospitalList(hospitals), len(hospitals))
}

func invalidHospitalText(n int) string {
	return fmt.Sprintf("❌ Invalid hospital number. Please select 1-%d", n)
}

func invalidSlotText(n int) string {
	return fmt.Sprintf("❌ Invalid slot number. Please select 1-%d", n)
}

func invalidDoctorText(n int) string {
	return fmt.Sprintf("❌ Invalid doctor number. Please select 1-%d", n)
}

func emergencyHospitalSelectedText(h geo.Facility) string {
	return fmt.Sprintf(`🚨 *EMERGENCY APPOINTMENT - %s*

🏥 Hospital: %s
📍 Distance: %s km
🚨 Priority: EMERGENCY
⏰ Slot: IMMEDIATE (Within 1 hour)

👤 *Please enter patient's full name:*`, h.Name, h.Name, km(h.DistanceKm))
}

func emergencyConfirmedText(id uint, patient, pincode string, h geo.Facility) string {
	return fmt.Sprintf(`✅ *EMERGENCY APPOINTMENT CONFIRMED!*

🚨 ID: %d
👤 Patient: %s
🏥 Hospital: %s
📍 Pincode: %s
📏 Distance: %s km
⏰ Time: IMMEDIATE (Within 1 hour)
🚑 Priority: EMERGENCY
🗺️ Maps: %s

📞 Hospital will contact you shortly.
🚨 Ambulance dispatched if needed.

💡 *Stay calm and follow instructions*
Type 'menu' for main options`, id, patient, h.Name, pincode, km(h.DistanceKm), h.MapsLink)
}

func slotChoiceText(h geo.Facility, slots []string) string {
	lines := make([]string, 0, len(slots))
	for i, s := range slots {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s))
	}
	return fmt.Sprintf(`🏥 *Appointment at %s*

Available slots:
%s

👉 Select slot number (1-%d):`, h.Name, strings.Join(lines, "\n"), len(slots))
}

func appointmentSummaryText(h geo.Facility, slot string) string {
	return fmt.Sprintf(`📅 *Appointment Summary:*
🏥 Hospital: %s
📅 Slot: %s

Please enter patient's name:`, h.Name, slot)
}

func bookingConfirmedText(id uint, patient string, h geo.Facility, slot string) string {
	return fmt.Sprintf(`✅ *Appointment Booked Successfully!*

📋 ID: %d
👤 Patient: %s
🏥 Hospital: %s
📅 Date & Time: %s
📍 Maps: %s

🔄 Status: Pending Approval
📞 You'll receive confirmation via WhatsApp.

Type 'menu' for main menu.`, id, patient, h.Name, slot, h.MapsLink)
}

func doctorListText(doctors []models.Doctor) string {
	lines := make([]string, 0, len(doctors))
	for i, d := range doctors {
		lines = append(lines, fmt.Sprintf("%d. %s (%s) - %s", i+1, d.Name, d.Specialization, d.Fee))
	}
	return "📞 *Available Doctors:*\n" + strings.Join(lines, "\n") + "\n\nSelect doctor number:"
}

func doctorCardText(d models.Doctor) string {
	return fmt.Sprintf(`📞 *Doctor Selected: %s*

💼 Specialization: %s
💰 Fee: %s
🌐 Languages: %s

📲 Contact: %s
🔗 Online Link: %s

💡 *Click the link above to start consultation*

Type 'menu' for main menu.`, d.Name, d.Specialization, d.Fee, strings.Join(d.LanguageList(), ", "), d.Contact, d.OnlineLink)
}

// BookingReceivedMessage is the WhatsApp notice sent after a booking.
func BookingReceivedMessage(id uint, patient, hospital, slot string) string {
	return fmt.Sprintf("🩺 Sehat Saathi: Appointment #%d for %s at %s on %s is pending approval. We will confirm shortly.",
		id, patient, hospital, slot)
}

// EmergencyBookedMessage is the WhatsApp notice sent after an emergency booking.
func EmergencyBookedMessage(id uint, patient, hospital, mapsLink string) string {
	return fmt.Sprintf("🚨 Sehat Saathi: Emergency appointment #%d for %s at %s is CONFIRMED (within 1 hour). Directions: %s",
		id, patient, hospital, mapsLink)
}

package chat

// State is a node of the conversation graph.
type State string

const (
	StateMainMenu                      State = "main_menu"
	StateEmergencyHelp                 State = "emergency_help"
	StateAwaitingPincodeForEmergency   State = "awaiting_pincode_for_emergency"
	StateEmergencyServicesShown        State = "emergency_services_shown"
	StateEmergencyAppointPincode       State = "emergency_appoint_pincode"
	StateEmergencyHospitalSelect       State = "emergency_hospital_select"
	StateEmergencyPatientName          State = "emergency_patient_name"
	StateGeneralQuery                  State = "general_query"
	StateAwaitingPincodeForAppointment State = "awaiting_pincode_for_appointment"
	StateHospitalsShown                State = "hospitals_shown"
	StateHospitalsShownForAppointment  State = "hospitals_shown_for_appointment"
	StateSelectSlot                    State = "select_slot"
	StateGetPatientName                State = "get_patient_name"
	StateTeleSelect                    State = "tele_select"
	StateAwaitingPincodeForHospital    State = "awaiting_pincode_for_hospital"
)

// States lists every state in menu order.
var States = []State{
	StateMainMenu,
	StateEmergencyHelp,
	StateAwaitingPincodeForEmergency,
	StateEmergencyServicesShown,
	StateEmergencyAppointPincode,
	StateEmergencyHospitalSelect,
	StateEmergencyPatientName,
	StateGeneralQuery,
	StateAwaitingPincodeForAppointment,
	StateHospitalsShown,
	StateHospitalsShownForAppointment,
	StateSelectSlot,
	StateGetPatientName,
	StateTeleSelect,
	StateAwaitingPincodeForHospital,
}

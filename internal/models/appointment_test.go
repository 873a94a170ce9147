package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAppointmentStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "rejected", "emergency"} {
		assert.NoError(t, ValidateAppointmentStatus(s), s)
	}
	assert.Error(t, ValidateAppointmentStatus("approved"))
	assert.Error(t, ValidateAppointmentStatus(""))
}

func TestAppointmentAction(t *testing.T) {
	status, ok := AppointmentAction("accept")
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusConfirmed, status)

	status, ok = AppointmentAction("reject")
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusRejected, status)

	_, ok = AppointmentAction("delete")
	assert.False(t, ok)
}

func TestDoctor_LanguageList(t *testing.T) {
	d := Doctor{Languages: "Hindi, English,,Gujarati "}
	assert.Equal(t, []string{"Hindi", "English", "Gujarati"}, d.LanguageList())
}

func TestHasRealPhone(t *testing.T) {
	assert.False(t, HasRealPhone(PhoneWebUser))
	assert.False(t, HasRealPhone(PhoneEmergencyUser))
	assert.False(t, HasRealPhone(""))
	assert.True(t, HasRealPhone("+919876543210"))
}

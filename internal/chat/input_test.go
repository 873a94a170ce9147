package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw    string
		kind   Kind
		number int
	}{
		{"", KindEmpty, 0},
		{"   ", KindEmpty, 0},
		{"menu", KindReset, 0},
		{"  Main Menu ", KindReset, 0},
		{"BACK", KindReset, 0},
		{"home", KindReset, 0},
		{"0", KindReset, 0},
		{"Namaste", KindGreeting, 0},
		{"hi", KindGreeting, 0},
		{"nearby", KindKeyword, 0},
		{"Appoint", KindKeyword, 0},
		{"3", KindNumber, 3},
		{"012", KindNumber, 12},
		{"110001", KindPincode, 110001},
		{"12345", KindNumber, 12345},
		{"1234567", KindNumber, 1234567},
		{"99999999999999999999", KindNumber, -1},
		{"11000a", KindText, 0},
		{"-1", KindText, 0},
		{"sir dard hai", KindText, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			in := Classify(tt.raw)
			assert.Equal(t, tt.kind, in.Kind)
			assert.Equal(t, tt.number, in.Number)
		})
	}
}

func TestClassify_PreservesRawCase(t *testing.T) {
	in := Classify("  Ramesh Kumar ")
	assert.Equal(t, "Ramesh Kumar", in.Raw)
	assert.Equal(t, "ramesh kumar", in.Text)
}

func TestIsPincode(t *testing.T) {
	assert.True(t, IsPincode("560001"))
	assert.False(t, IsPincode("56000"))
	assert.False(t, IsPincode("5600011"))
	assert.False(t, IsPincode("56000x"))
	assert.False(t, IsPincode("５６０００１"))
}

package chat

import (
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/models"
)

const (
	slotDays    = 7
	maxSlots    = 8
	emergencyIn = time.Hour
)

var slotHours = []int{10, 12, 14, 16}

// AvailableSlots lists weekday slots at 10:00, 12:00, 14:00 and 16:00 over the
// next seven days starting today, skipping times already past, capped at
// eight.
func AvailableSlots(now time.Time) []string {
	slots := make([]string, 0, maxSlots)
	for i := 0; i < slotDays; i++ {
		day := now.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, h := range slotHours {
			t := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, now.Location())
			if !t.After(now) {
				continue
			}
			slots = append(slots, t.Format(models.SlotLayout))
			if len(slots) == maxSlots {
				return slots
			}
		}
	}
	return slots
}

// EmergencySlot is the slot written for emergency bookings.
func EmergencySlot(now time.Time) string {
	return now.Add(emergencyIn).Format(models.SlotLayout)
}

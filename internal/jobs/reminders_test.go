package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatsaathi/sehat-backend/internal/models"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

type recordingSender struct {
	mu   sync.Mutex
	to   []string
	body []string
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, to)
	r.body = append(r.body, body)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.to)
}

func book(t *testing.T, store storage.Store, phone, slot, status string) {
	t.Helper()
	ctx := context.Background()
	p, err := store.CreatePatient(ctx, &models.Patient{Name: "Asha", Phone: phone})
	require.NoError(t, err)
	_, err = store.CreateAppointment(ctx, &models.Appointment{
		PatientID: p.ID, HospitalName: "City Clinic", Slot: slot, Status: status,
		MapsLink: "https://www.google.com/maps/search/?api=1&query=1,2",
	})
	require.NoError(t, err)
}

func TestReminderJob_RunOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local)

	book(t, store, "+919000000001", "2026-10-14 12:00", models.AppointmentStatusConfirmed)
	book(t, store, models.PhoneWebUser, "2026-10-14 14:00", models.AppointmentStatusConfirmed)
	book(t, store, "+919000000002", "2026-10-14 16:00", models.AppointmentStatusPending)
	book(t, store, "+919000000003", "2026-10-16 10:00", models.AppointmentStatusConfirmed)

	sender := &recordingSender{}
	job := NewReminderJob(store, sender, time.Hour)
	job.now = func() time.Time { return now }

	sent, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"+919000000001"}, sender.to)
	assert.Contains(t, sender.body[0], "City Clinic is on 2026-10-14 12:00")

	sent, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderJob_SendFailureLeavesUnmarked(t *testing.T) {
	store := storage.NewMemoryStore()
	book(t, store, "+919000000001", time.Now().Add(2*time.Hour).Format(models.SlotLayout), models.AppointmentStatusConfirmed)

	sender := &recordingSender{err: errors.New("twilio down")}
	job := NewReminderJob(store, sender, time.Hour)

	sent, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	sender.err = nil
	sent, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderJob_StartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	book(t, store, "+919000000001", time.Now().Add(2*time.Hour).Format(models.SlotLayout), models.AppointmentStatusConfirmed)

	sender := &recordingSender{}
	job := NewReminderJob(store, sender, time.Hour)
	job.Start(context.Background())
	job.Start(context.Background())

	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
	job.Stop()
	job.Stop()
}

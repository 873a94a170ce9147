package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/models"
	"github.com/sehatsaathi/sehat-backend/internal/notify"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

const reminderWindow = 24 * time.Hour

// ReminderJob sends WhatsApp reminders for confirmed appointments in the
// next 24 hours
type ReminderJob struct {
	store    storage.Store
	sender   notify.Sender
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReminderJob creates a new reminder job
func NewReminderJob(store storage.Store, sender notify.Sender, interval time.Duration) *ReminderJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderJob{
		store:    store,
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the job in the background until ctx is done or Stop is called.
func (j *ReminderJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil {
		log.Warn().Msg("Reminder job already running")
		return
	}

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})

	log.Info().Dur("interval", j.interval).Msg("⏰ Starting appointment reminder job...")
	go j.loop(ctx, j.done)
}

// Stop halts the job and waits for the current run to finish.
func (j *ReminderJob) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Msg("Stopped appointment reminder job")
}

func (j *ReminderJob) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if _, err := j.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("❌ Reminder run failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce sends all due reminders and returns how many were sent.
func (j *ReminderJob) RunOnce(ctx context.Context) (int, error) {
	now := j.now()
	due, err := j.store.ListAppointmentsDueForReminder(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appt := range due {
		if ctx.Err() != nil {
			break
		}
		if !models.HasRealPhone(appt.PatientPhone) {
			continue
		}

		if err := j.sender.Send(ctx, appt.PatientPhone, reminderText(appt)); err != nil {
			log.Error().Err(err).Uint("appointment_id", appt.ID).Msg("❌ Failed to send appointment reminder")
			continue
		}
		if err := j.store.MarkReminderSent(ctx, appt.ID, now); err != nil {
			log.Error().Err(err).Uint("appointment_id", appt.ID).Msg("❌ Failed to mark reminder as sent")
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Info().Int("sent", sent).Int("due", len(due)).Msg("📨 Appointment reminders sent")
	}
	return sent, nil
}

func reminderText(a *models.Appointment) string {
	msg := fmt.Sprintf("⏰ Sehat Saathi reminder: %s, your appointment at %s is on %s.", a.PatientName, a.HospitalName, a.Slot)
	if a.MapsLink != "" {
		msg += "\n🗺️ " + a.MapsLink
	}
	return msg + "\nReply 'menu' for options."
}

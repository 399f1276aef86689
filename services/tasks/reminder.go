package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glowapp/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.RecordID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues a reminder LeadTime before each appointment.
type ReminderScheduler struct {
	Queue    Enqueuer
	LeadTime time.Duration
	Location *time.Location
	Now      func() time.Time
}

func NewReminderScheduler(queue Enqueuer, leadTime time.Duration, loc *time.Location) *ReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderScheduler{Queue: queue, LeadTime: leadTime, Location: loc, Now: time.Now}
}

// ScheduleReminder returns the fire time, or nil when it has already passed.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, record models.ReservationRecord) (*time.Time, error) {
	startsAt, err := record.Confirmation.StartsAt(s.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid appointment time %q %q: %w", record.Confirmation.Date, record.Confirmation.Time, err)
	}
	fireAt := startsAt.Add(-s.LeadTime)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if !fireAt.After(now()) {
		return nil, nil
	}

	payload := models.ReminderPayload{
		RecordID:      record.ID,
		UserID:        record.UserID,
		ReservationID: record.Confirmation.ID,
		Title:         "Upcoming appointment",
		Body:          reminderBody(record, startsAt),
		FireDate:      fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return nil, err
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		return nil, fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return &fireAt, nil
}

func reminderBody(record models.ReservationRecord, startsAt time.Time) string {
	when := startsAt.Format("Mon 2 Jan at 15:04")
	if len(record.ServiceNames) == 0 {
		return "Your appointment is on " + when
	}
	body := record.ServiceNames[0]
	for _, name := range record.ServiceNames[1:] {
		body += ", " + name
	}
	return body + " on " + when
}

package notification

import (
	"context"

	"glowapp/models"

	"go.uber.org/zap"
)

// NotificationService delivers appointment reminders to customers.
type NotificationService interface {
	SendReminder(ctx context.Context, payload models.ReminderPayload) error
}

// LogNotificationService writes reminders to the application log. The salon
// backend owns customer contact details, so this is the delivery used until
// it exposes a notification endpoint.
type LogNotificationService struct {
	logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotificationService{logger: logger}
}

func (s *LogNotificationService) SendReminder(_ context.Context, p models.ReminderPayload) error {
	s.logger.Info("Appointment reminder",
		zap.String("userId", p.UserID),
		zap.String("reservationId", p.ReservationID),
		zap.String("title", p.Title),
		zap.String("body", p.Body),
	)
	return nil
}

package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glowapp/config"
	"glowapp/models"
	"glowapp/services/notification"
	"glowapp/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderMarker records that a reminder went out.
type ReminderMarker interface {
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

// RedisOpt is the asynq connection shared by the reminder client and worker.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker starts the async worker in background and returns it so
// the caller can shut it down.
func InitReminderWorker(notifSvc notification.NotificationService, records ReminderMarker, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(notifSvc, records, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("Failed to start reminder worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reminder worker disabled after max retry attempts")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleReminderTask(notifSvc notification.NotificationService, records ReminderMarker, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		if err := notifSvc.SendReminder(ctx, p); err != nil {
			logger.Error("Failed to send reminder", zap.String("recordId", p.RecordID), zap.Error(err))
			return err
		}
		if records != nil {
			if err := records.MarkReminded(ctx, p.RecordID, time.Now()); err != nil {
				logger.Warn("Failed to mark reservation reminded", zap.String("recordId", p.RecordID), zap.Error(err))
			}
		}
		return nil
	}
}

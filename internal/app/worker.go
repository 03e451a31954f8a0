package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/usersvc/internal/core/ports"
	"github.com/GoArmGo/usersvc/internal/messaging/payloads"
)

// runWorker потребляет события о пользователях и пишет их в журнал аудита
func runWorker(ctx context.Context, consumer ports.UserEventConsumer, logger *slog.Logger) error {
	if err := consumer.StartConsumingUserEvents(ctx, auditHandler(logger)); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	logger.Info("worker started, waiting for user events")
	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}

func auditHandler(logger *slog.Logger) func(context.Context, payloads.UserEvent) error {
	return func(ctx context.Context, event payloads.UserEvent) error {
		logger.InfoContext(ctx, "user event",
			"type", event.Type,
			"user_id", event.UserID,
			"username", event.Username,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}

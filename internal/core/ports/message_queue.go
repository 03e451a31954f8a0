package ports

import (
	"context"

	"github.com/GoArmGo/usersvc/internal/messaging/payloads"
)

// UserEventPublisher публикует события об изменениях пользователей
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event payloads.UserEvent) error
}

// UserEventConsumer потребляет события о пользователях, используется воркером
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди,
	// handler вызывается для каждого полученного сообщения
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) error
}

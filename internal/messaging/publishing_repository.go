// Package messaging связывает репозиторий пользователей с публикацией событий.
package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/core/ports"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/messaging/payloads"
	"github.com/google/uuid"
)

// PublishingRepository оборачивает репозиторий и после успешных изменений
// публикует событие. Ошибка публикации только логируется и не меняет результат вызова.
type PublishingRepository struct {
	ports.UserRepository
	publisher ports.UserEventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewPublishingRepository(repo ports.UserRepository, publisher ports.UserEventPublisher, logger *slog.Logger) *PublishingRepository {
	return &PublishingRepository{
		UserRepository: repo,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

func (r *PublishingRepository) Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error) {
	user, err := r.UserRepository.Create(ctx, newUser)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, payloads.UserEvent{
		Type:     payloads.UserCreated,
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

func (r *PublishingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	deleted, err := r.UserRepository.Delete(ctx, id)
	if err != nil || deleted == 0 {
		return deleted, err
	}

	r.publish(ctx, payloads.UserEvent{Type: payloads.UserDeleted, UserID: id})
	return deleted, nil
}

func (r *PublishingRepository) publish(ctx context.Context, event payloads.UserEvent) {
	event.OccurredAt = r.now().UTC()
	// событие не должно теряться из-за отмены запроса клиентом
	if err := r.publisher.PublishUserEvent(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Error("failed to publish user event",
			"type", event.Type,
			"user_id", event.UserID,
			"error", err,
		)
		return
	}
	r.logger.Debug("user event published", "type", event.Type, "user_id", event.UserID)
}

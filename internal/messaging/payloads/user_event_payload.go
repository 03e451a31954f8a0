package payloads

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserCreated = "user.created"
	UserDeleted = "user.deleted"
)

// UserEvent это сообщение об изменении пользователя. Пароль сюда никогда не попадает.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

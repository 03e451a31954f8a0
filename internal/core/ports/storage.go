package ports

import (
	"context"

	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/google/uuid"
)

// UserRepository определяет методы для взаимодействия с хранилищем пользователей.
// Каждый вызов независим и использует ровно одно соединение из пула.
type UserRepository interface {
	// ReadAll возвращает всех пользователей, порядок определяет хранилище
	ReadAll(ctx context.Context) ([]domain.User, error)

	// Find ищет пользователя по id, при отсутствии возвращает domain.ErrUserNotFound
	Find(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Create вставляет одну строку; совпадение username даёт domain.ErrDuplicateUsername
	Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error)

	// Delete удаляет не более одной строки и возвращает число удалённых (0 или 1)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

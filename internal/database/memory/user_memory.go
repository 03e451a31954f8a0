// Package memory содержит хранилище пользователей в памяти процесса.
// Используется в тестах обработчиков и при STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/google/uuid"
)

// UserStorage повторяет поведение таблицы users: id генерируется при вставке,
// username уникален.
type UserStorage struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
	order      []uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:      make(map[uuid.UUID]domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (s *UserStorage) ReadAll(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *UserStorage) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (s *UserStorage) Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[newUser.Username]; exists {
		return nil, fmt.Errorf("%w: users_username_key", domain.ErrDuplicateUsername)
	}

	user := domain.User{
		ID:       uuid.New(),
		Username: newUser.Username,
		Email:    newUser.Email,
		Password: newUser.Password,
	}
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	s.order = append(s.order, user.ID)

	return &user, nil
}

func (s *UserStorage) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}

	delete(s.users, id)
	delete(s.byUsername, user.Username)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// Len возвращает число хранимых пользователей
func (s *UserStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

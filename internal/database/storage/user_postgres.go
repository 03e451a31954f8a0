package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	selectUsers = `SELECT id, username, email, password FROM users`

	selectUserByID = `SELECT id, username, email, password FROM users WHERE id = $1`

	insertUser = `
	INSERT INTO users (username, email, password)
	VALUES (:username, :email, :password)
	RETURNING id, username, email, password
	`

	deleteUser = `DELETE FROM users WHERE id = $1`
)

// Pool выдаёт соединение на время одного вызова
type Pool interface {
	WithConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error
}

// UserStorage реализует ports.UserRepository поверх sqlx
type UserStorage struct {
	pool   Pool
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(pool Pool, logger *slog.Logger) *UserStorage {
	return &UserStorage{pool: pool, logger: logger}
}

// ReadAll получает всех пользователей без явной сортировки
func (s *UserStorage) ReadAll(ctx context.Context) ([]domain.User, error) {
	const op = "storage.UserStorage.ReadAll"
	start := time.Now()

	users := []domain.User{}
	err := s.pool.WithConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &users, selectUsers)
	})
	if err != nil {
		s.logger.Error("failed to read users", "error", err)
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	s.logger.Info("users listed",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// Find получает пользователя по первичному ключу
func (s *UserStorage) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "storage.UserStorage.Find"
	start := time.Now()

	var user domain.User
	err := s.pool.WithConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &user, selectUserByID, id)
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("user not found by id", "id", id)
		} else {
			s.logger.Error("failed to get user by id", "id", id, "error", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// Create вставляет одну строку, id генерирует база
func (s *UserStorage) Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error) {
	const op = "storage.UserStorage.Create"
	start := time.Now()

	var user domain.User
	err := s.pool.WithConn(ctx, func(conn *sqlx.Conn) error {
		query, args, err := sqlx.Named(insertUser, newUser)
		if err != nil {
			return err
		}
		return conn.GetContext(ctx, &user, conn.Rebind(query), args...)
	})
	if err != nil {
		err = classify(err)
		s.logger.Error("failed to create user", "username", newUser.Username, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user created",
		"id", user.ID,
		"username", user.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// Delete удаляет пользователя; отсутствие строки не ошибка, а count = 0
func (s *UserStorage) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "storage.UserStorage.Delete"
	start := time.Now()

	var affected int64
	err := s.pool.WithConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, deleteUser, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		err = classify(err)
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user delete executed",
		"id", id,
		"deleted", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return affected, nil
}

// classify переводит ошибки драйвера в доменные
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrPoolExhausted), errors.Is(err, domain.ErrStorageUnavailable):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrUserNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, pqErr.Constraint)
		case pqErr.Code.Class() == "23", pqErr.Code.Class() == "22":
			// нарушение ограничений или некорректные данные
			return fmt.Errorf("%w: %s", domain.ErrInvalidUser, pqErr.Message)
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/database/client"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userModel описывает строку таблицы users
type userModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username string    `gorm:"uniqueIndex;not null"`
	Email    string    `gorm:"not null"`
	Password string    `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() domain.User {
	return domain.User{ID: m.ID, Username: m.Username, Email: m.Email, Password: m.Password}
}

// GormUserStorage реализует интерфейс ports.UserRepository с использованием GORM
type GormUserStorage struct {
	db             *gorm.DB
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, acquireTimeout time.Duration, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, acquireTimeout: acquireTimeout, logger: logger}
}

// withConn держит одно выделенное соединение на время fn.
// Ожидание соединения ограничено acquireTimeout, сами запросы идут под ctx запроса.
func (s *GormUserStorage) withConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	actx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	acquired := false
	err := s.db.WithContext(actx).Connection(func(tx *gorm.DB) error {
		acquired = true
		return fn(tx.WithContext(ctx))
	})
	if err != nil && !acquired {
		return client.ClassifyAcquireError(ctx, err)
	}
	return err
}

// ReadAll получает всех пользователей
func (s *GormUserStorage) ReadAll(ctx context.Context) ([]domain.User, error) {
	const op = "postgres.GormUserStorage.ReadAll"
	start := time.Now()

	var models []userModel
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Find(&models).Error
	})
	if err != nil {
		s.logger.Error("failed to read users with GORM", "error", err)
		return nil, fmt.Errorf("%s: %w", op, classifyGorm(err))
	}

	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}

	s.logger.Info("users listed",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// Find получает пользователя по ID
func (s *GormUserStorage) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.GormUserStorage.Find"
	start := time.Now()

	var m userModel
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Take(&m, "id = ?", id).Error
	})
	if err != nil {
		err = classifyGorm(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("user not found by id", "id", id)
		} else {
			s.logger.Error("failed to get user by id with GORM", "id", id, "error", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	user := m.toDomain()
	return &user, nil
}

// Create вставляет пользователя, id приходит из RETURNING
func (s *GormUserStorage) Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error) {
	const op = "postgres.GormUserStorage.Create"
	start := time.Now()

	m := userModel{
		Username: newUser.Username,
		Email:    newUser.Email,
		Password: newUser.Password,
	}
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	if err != nil {
		err = classifyGorm(err)
		s.logger.Error("failed to create user with GORM", "username", newUser.Username, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user created",
		"id", m.ID,
		"username", m.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	user := m.toDomain()
	return &user, nil
}

// Delete удаляет пользователя и возвращает число удалённых строк
func (s *GormUserStorage) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "postgres.GormUserStorage.Delete"
	start := time.Now()

	var affected int64
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&userModel{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		err = classifyGorm(err)
		s.logger.Error("failed to delete user with GORM", "id", id, "error", err)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user delete executed",
		"id", id,
		"deleted", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return affected, nil
}

func classifyGorm(err error) error {
	switch {
	case errors.Is(err, domain.ErrPoolExhausted), errors.Is(err, domain.ErrStorageUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrDuplicateUsername, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", domain.ErrInvalidUser, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
}

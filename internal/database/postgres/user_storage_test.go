package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/logger"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestGormStorage(t *testing.T) (*GormUserStorage, *gorm.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	cfg := &config.Config{DatabaseURL: dsn}
	cfg.DB.MaxOpenConns = 4
	cfg.DB.MaxIdleConns = 2
	cfg.DB.ConnMaxLifetime = time.Minute

	db, err := NewGormDB(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password TEXT NOT NULL
	)`).Error)

	return NewGormUserStorage(db, 3*time.Second, logger.Discard()), db
}

func fakeNewUser() domain.NewUser {
	return domain.NewUser{
		Username: gofakeit.Username() + "_" + uuid.NewString()[:8],
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 10),
	}
}

func TestGormUserStorage_Lifecycle(t *testing.T) {
	s, db := newTestGormStorage(t)
	ctx := context.Background()

	nu := fakeNewUser()
	created, err := s.Create(ctx, nu)
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = ?`, created.ID) })

	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := s.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *found)

	users, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, *created)

	_, err = s.Create(ctx, nu)
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	n, err := s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Find(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	n, err = s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestClassifyGorm(t *testing.T) {
	assert.ErrorIs(t, classifyGorm(gorm.ErrRecordNotFound), domain.ErrUserNotFound)
	assert.ErrorIs(t, classifyGorm(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)), domain.ErrDuplicateUsername)
	assert.ErrorIs(t, classifyGorm(gorm.ErrCheckConstraintViolated), domain.ErrInvalidUser)
	assert.ErrorIs(t, classifyGorm(domain.ErrPoolExhausted), domain.ErrPoolExhausted)
	assert.ErrorIs(t, classifyGorm(errors.New("broken pipe")), domain.ErrStorageUnavailable)
}

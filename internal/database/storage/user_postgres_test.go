package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/GoArmGo/usersvc/internal/database/client"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/logger"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL
)`

// newTestStorage подключается к базе из TEST_DATABASE_URL, без неё тест пропускается
func newTestStorage(t *testing.T) (*UserStorage, *sqlx.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(createUsersTable)
	require.NoError(t, err)

	pool := client.NewClientFromDB(db, 3*time.Second, logger.Discard())
	return NewUserStorage(pool, logger.Discard()), db
}

func fakeNewUser() domain.NewUser {
	return domain.NewUser{
		Username: gofakeit.Username() + "_" + uuid.NewString()[:8],
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 10),
	}
}

func cleanupUser(t *testing.T, db *sqlx.DB, id uuid.UUID) {
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM users WHERE id = $1`, id) })
}

func TestUserStorage_CreateReturnsStoredRow(t *testing.T) {
	s, db := newTestStorage(t)
	ctx := context.Background()

	nu := fakeNewUser()
	created, err := s.Create(ctx, nu)
	require.NoError(t, err)
	cleanupUser(t, db, created.ID)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, nu.Username, created.Username)
	assert.Equal(t, nu.Email, created.Email)

	found, err := s.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *found)
}

func TestUserStorage_DuplicateUsername(t *testing.T) {
	s, db := newTestStorage(t)
	ctx := context.Background()

	nu := fakeNewUser()
	created, err := s.Create(ctx, nu)
	require.NoError(t, err)
	cleanupUser(t, db, created.ID)

	_, err = s.Create(ctx, nu)
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM users WHERE username = $1`, nu.Username))
	assert.Equal(t, 1, count)
}

func TestUserStorage_DeleteThenFind(t *testing.T) {
	s, db := newTestStorage(t)
	ctx := context.Background()

	created, err := s.Create(ctx, fakeNewUser())
	require.NoError(t, err)
	cleanupUser(t, db, created.ID)

	n, err := s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Find(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	n, err = s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestUserStorage_DeleteUnknownIsNotAnError(t *testing.T) {
	s, _ := newTestStorage(t)

	n, err := s.Delete(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestUserStorage_ReadAllContainsCreated(t *testing.T) {
	s, db := newTestStorage(t)
	ctx := context.Background()

	bob, err := s.Create(ctx, fakeNewUser())
	require.NoError(t, err)
	cleanupUser(t, db, bob.ID)
	alice, err := s.Create(ctx, fakeNewUser())
	require.NoError(t, err)
	cleanupUser(t, db, alice.ID)

	users, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, *bob)
	assert.Contains(t, users, *alice)
}

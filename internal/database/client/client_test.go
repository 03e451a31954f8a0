package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSingleConnClient(t *testing.T, acquireTimeout time.Duration) *Client {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return NewClientFromDB(db, acquireTimeout, logger.Discard())
}

func TestAcquire_TimesOutWhenPoolIsExhausted(t *testing.T) {
	c := newSingleConnClient(t, 50*time.Millisecond)
	ctx := context.Background()

	held, err := c.Acquire(ctx)
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	_, err = c.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAcquire_SucceedsAfterRelease(t *testing.T) {
	c := newSingleConnClient(t, 50*time.Millisecond)
	ctx := context.Background()

	first, err := c.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := c.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestAcquire_CancelledRequestIsNotExhaustion(t *testing.T) {
	c := newSingleConnClient(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, domain.ErrPoolExhausted)
}

func TestWithConn_ReleasesOnError(t *testing.T) {
	c := newSingleConnClient(t, 50*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	err := c.WithConn(ctx, func(conn *sqlx.Conn) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	// единственное соединение должно вернуться в пул
	err = c.WithConn(ctx, func(conn *sqlx.Conn) error {
		var one int
		return conn.GetContext(ctx, &one, "SELECT 1")
	})
	require.NoError(t, err)
}

func TestWithConn_PropagatesExhaustion(t *testing.T) {
	c := newSingleConnClient(t, 50*time.Millisecond)
	ctx := context.Background()

	held, err := c.Acquire(ctx)
	require.NoError(t, err)
	defer held.Close()

	called := false
	err = c.WithConn(ctx, func(conn *sqlx.Conn) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.False(t, called)
}

func TestPing(t *testing.T) {
	c := newSingleConnClient(t, time.Second)
	require.NoError(t, c.Ping(context.Background()))
}

func TestClassifyAcquireError(t *testing.T) {
	live := context.Background()

	assert.ErrorIs(t, ClassifyAcquireError(live, context.DeadlineExceeded), domain.ErrPoolExhausted)

	expired, cancel := context.WithTimeout(live, -time.Second)
	defer cancel()
	err := ClassifyAcquireError(expired, context.DeadlineExceeded)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.ErrorIs(t, ClassifyAcquireError(live, errors.New("dial tcp: refused")), domain.ErrStorageUnavailable)
}

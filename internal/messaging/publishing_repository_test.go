package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/usersvc/internal/database/memory"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/logger"
	"github.com/GoArmGo/usersvc/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.UserEvent
	err    error
}

func (p *recordingPublisher) PublishUserEvent(_ context.Context, event payloads.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newRepo(pub *recordingPublisher) *PublishingRepository {
	r := NewPublishingRepository(memory.NewUserStorage(), pub, logger.Discard())
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

func TestCreatePublishesUserCreated(t *testing.T) {
	pub := &recordingPublisher{}
	repo := newRepo(pub)

	user, err := repo.Create(context.Background(), domain.NewUser{Username: "bob", Email: "bob@x.org", Password: "secret"})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, payloads.UserEvent{
		Type:       payloads.UserCreated,
		UserID:     user.ID,
		Username:   "bob",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, pub.events[0])
}

func TestFailedCreatePublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	repo := newRepo(pub)
	ctx := context.Background()

	nu := domain.NewUser{Username: "bob", Email: "bob@x.org", Password: "secret"}
	_, err := repo.Create(ctx, nu)
	require.NoError(t, err)
	_, err = repo.Create(ctx, nu)
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	assert.Len(t, pub.events, 1)
}

func TestDeletePublishesOnlyWhenRowRemoved(t *testing.T) {
	pub := &recordingPublisher{}
	repo := newRepo(pub)
	ctx := context.Background()

	user, err := repo.Create(ctx, domain.NewUser{Username: "bob", Email: "bob@x.org", Password: "secret"})
	require.NoError(t, err)

	n, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.Len(t, pub.events, 2)
	assert.Equal(t, payloads.UserDeleted, pub.events[1].Type)
	assert.Equal(t, user.ID, pub.events[1].UserID)
}

func TestPublishFailureDoesNotChangeResult(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	repo := newRepo(pub)

	user, err := repo.Create(context.Background(), domain.NewUser{Username: "bob", Email: "bob@x.org", Password: "secret"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestReadsPassThrough(t *testing.T) {
	pub := &recordingPublisher{}
	repo := newRepo(pub)
	ctx := context.Background()

	user, err := repo.Create(ctx, domain.NewUser{Username: "bob", Email: "bob@x.org", Password: "secret"})
	require.NoError(t, err)

	found, err := repo.Find(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, *user, *found)

	all, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, pub.events, 1)
}

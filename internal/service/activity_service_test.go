package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository/postgres"
	"github.com/mira/workspace-hub/internal/service"
	"github.com/mira/workspace-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []service.ActivityEvent
}

func (p *capturePublisher) PublishActivity(_ uuid.UUID, event service.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) Events() []service.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ActivityEvent(nil), p.events...)
}

func newActivityService(t *testing.T) (*service.ActivityService, *capturePublisher, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	publisher := &capturePublisher{}
	svc := service.NewActivityService(repos.Activity, publisher, zap.NewNop())
	return svc, publisher, db
}

func TestActivityService_OpenAndClose(t *testing.T) {
	svc, publisher, db := newActivityService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	session, err := svc.OpenActivity(ctx, user.ID, workspace.ID)
	require.NoError(t, err)
	assert.True(t, session.Active)
	assert.Nil(t, session.EndTime)

	closed, err := svc.CloseActivity(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	require.NotNil(t, closed.EndTime)
	assert.False(t, closed.EndTime.Before(closed.StartTime))

	// Closing again returns the same row without publishing another event.
	again, err := svc.CloseActivity(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, closed.EndTime.Unix(), again.EndTime.Unix())

	events := publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, service.ActivityOpened, events[0].Type)
	assert.Equal(t, service.ActivityClosed, events[1].Type)
	assert.Equal(t, session.ID, events[1].SessionID)
}

func TestActivityService_RecordMessage(t *testing.T) {
	svc, _, db := newActivityService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	session, err := svc.OpenActivity(ctx, user.ID, workspace.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordMessage(ctx, session.ID))
	require.NoError(t, svc.RecordMessage(ctx, session.ID))

	var stored domain.ActivitySession
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	assert.Equal(t, 2, stored.Messages)

	// Counts against a closed session are dropped.
	_, err = svc.CloseActivity(ctx, session.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMessage(ctx, session.ID))

	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	assert.Equal(t, 2, stored.Messages)
}

func TestActivityService_ReconcileOnStartup(t *testing.T) {
	svc, _, db := newActivityService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	other, _ := testutil.NewUserBuilder().Build(t, db)
	stale1 := testutil.NewActivityBuilder(user.ID, workspace.ID).
		Live(time.Now().Add(-3 * time.Hour)).
		Build(t, db)
	stale2 := testutil.NewActivityBuilder(other.ID, workspace.ID).
		Live(time.Now().Add(-30 * time.Minute)).
		Build(t, db)
	finished := testutil.NewActivityBuilder(user.ID, workspace.ID).
		WithSpan(time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour)).
		Build(t, db)

	closed := svc.ReconcileOnStartup(ctx)
	assert.Equal(t, 2, closed)

	for _, id := range []uuid.UUID{stale1.ID, stale2.ID} {
		var stored domain.ActivitySession
		require.NoError(t, db.First(&stored, "id = ?", id).Error)
		assert.False(t, stored.Active)
		require.NotNil(t, stored.EndTime)
		assert.False(t, stored.EndTime.Before(stored.StartTime))
	}

	// The already-finished span keeps its original end.
	var stored domain.ActivitySession
	require.NoError(t, db.First(&stored, "id = ?", finished.ID).Error)
	assert.Equal(t, finished.EndTime.Unix(), stored.EndTime.Unix())

	// The sweep runs once per process lifetime.
	testutil.NewActivityBuilder(user.ID, workspace.ID).Live(time.Now()).Build(t, db)
	assert.Equal(t, 0, svc.ReconcileOnStartup(ctx))
}

func TestActivityService_FindOverlapping(t *testing.T) {
	svc, _, db := newActivityService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(owner).Build(t, db)

	userA, _ := testutil.NewUserBuilder().Build(t, db)
	userB, _ := testutil.NewUserBuilder().Build(t, db)
	userC, _ := testutil.NewUserBuilder().Build(t, db)
	userD, _ := testutil.NewUserBuilder().Build(t, db)

	day := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	probe := testutil.NewActivityBuilder(userA.ID, workspace.ID).
		WithSpan(at(10, 0), at(11, 0)).
		Build(t, db)
	// Two overlapping spans for the same user collapse to one result.
	testutil.NewActivityBuilder(userB.ID, workspace.ID).
		WithSpan(at(10, 30), at(12, 0)).
		Build(t, db)
	testutil.NewActivityBuilder(userB.ID, workspace.ID).
		WithSpan(at(10, 45), at(11, 15)).
		Build(t, db)
	// Outside the probe window.
	testutil.NewActivityBuilder(userC.ID, workspace.ID).
		WithSpan(at(13, 0), at(14, 0)).
		Build(t, db)
	// Live sessions have no upper bound and always reach the probe's end.
	testutil.NewActivityBuilder(userD.ID, workspace.ID).
		Live(at(9, 0)).
		Build(t, db)

	overlaps, err := svc.FindOverlapping(ctx, probe.ID, at(10, 0), at(11, 0), workspace.ID)
	require.NoError(t, err)

	users := make(map[uuid.UUID]int)
	for _, overlap := range overlaps {
		users[overlap.UserID]++
	}
	assert.Len(t, overlaps, 2)
	assert.Equal(t, 1, users[userB.ID])
	assert.Equal(t, 1, users[userD.ID])
	assert.Zero(t, users[userA.ID])
	assert.Zero(t, users[userC.ID])
}

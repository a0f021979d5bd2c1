package service_test

import (
	"context"
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

func newScheduleService(t *testing.T) (*service.ScheduleService, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	audit := service.NewAuditRecorder(repos.Audit, zap.NewNop())
	svc := service.NewScheduleService(repos.Schedule, repos.Session, repos.SessionType, repos.Member, audit)
	return svc, db
}

func TestScheduleService_ExpandOccurrence(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).
		WithSchedule([]int{int(time.Wednesday)}, 18, 0).
		Build(t, db)
	schedule := sessionType.Schedules[0]

	// 2025-06-11 is a Wednesday.
	wednesday := time.Date(2025, 6, 11, 9, 30, 0, 0, time.UTC)

	t.Run("resolves to stored time on the probe date", func(t *testing.T) {
		got, err := svc.ExpandOccurrence(ctx, schedule.ID, wednesday.UnixMilli(), 0)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC), got)
	})

	t.Run("deterministic across repeated probes", func(t *testing.T) {
		first, err := svc.ExpandOccurrence(ctx, schedule.ID, wednesday.UnixMilli(), 0)
		require.NoError(t, err)
		second, err := svc.ExpandOccurrence(ctx, schedule.ID, wednesday.Add(4*time.Hour).UnixMilli(), 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("offset shifts the resolved date only", func(t *testing.T) {
		// Tuesday 23:30 UTC is already Wednesday 01:30 for a UTC+2 caller,
		// but the occurrence still lands at the stored UTC wall time.
		probe := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)
		got, err := svc.ExpandOccurrence(ctx, schedule.ID, probe.UnixMilli(), 120)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC), got)
	})

	t.Run("weekday mismatch", func(t *testing.T) {
		thursday := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
		_, err := svc.ExpandOccurrence(ctx, schedule.ID, thursday.UnixMilli(), 0)
		assert.ErrorIs(t, err, domain.ErrNoOccurrence)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		_, err := svc.ExpandOccurrence(ctx, uuid.New(), wednesday.UnixMilli(), 0)
		assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
	})
}

func TestScheduleService_GetOrCreateSession(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).Build(t, db)
	schedule := sessionType.Schedules[0]

	instant := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

	first, err := svc.GetOrCreateSession(ctx, schedule.ID, instant)
	require.NoError(t, err)
	assert.Equal(t, workspace.ID, first.WorkspaceID)
	require.NotNil(t, first.ScheduleID)
	assert.Equal(t, schedule.ID, *first.ScheduleID)

	// Second materialization of the same occurrence returns the same row.
	second, err := svc.GetOrCreateSession(ctx, schedule.ID, instant)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&domain.SessionInstance{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different occurrence gets its own instance.
	other, err := svc.GetOrCreateSession(ctx, schedule.ID, instant.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestScheduleService_CreateUnscheduledSession(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).Build(t, db)

	date := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

	first, err := svc.CreateUnscheduledSession(ctx, sessionType.ID, date, user.ID)
	require.NoError(t, err)
	assert.Nil(t, first.ScheduleID)

	// One-off sessions are exempt from occurrence uniqueness.
	second, err := svc.CreateUnscheduledSession(ctx, sessionType.ID, date, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestScheduleService_CreateSessionType(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	created, err := svc.CreateSessionType(ctx, workspace.ID, "Training",
		[]service.SlotSpec{{Name: "Host", Capacity: 1}, {Name: "Trainer", Capacity: 4}},
		[]service.ScheduleSpec{{Days: []int{int(time.Wednesday)}, Hour: 18, Minute: 30}},
		user.ID)
	require.NoError(t, err)
	assert.Len(t, created.Slots, 2)
	require.Len(t, created.Schedules, 1)
	assert.Equal(t, 18, created.Schedules[0].Hour)

	t.Run("invalid schedule time", func(t *testing.T) {
		_, err := svc.CreateSessionType(ctx, workspace.ID, "Broken", nil,
			[]service.ScheduleSpec{{Days: []int{1}, Hour: 24, Minute: 0}}, user.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
	})

	t.Run("listing requires membership", func(t *testing.T) {
		types, err := svc.ListSessionTypes(ctx, user.ID, workspace.ID)
		require.NoError(t, err)
		require.Len(t, types, 1)
		assert.Equal(t, created.ID, types[0].ID)

		stranger, _ := testutil.NewUserBuilder().Build(t, db)
		_, err = svc.ListSessionTypes(ctx, stranger.ID, workspace.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestScheduleService_UpdateSchedule(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).Build(t, db)
	schedule := sessionType.Schedules[0]

	updated, err := svc.UpdateSchedule(ctx, schedule.ID,
		service.ScheduleSpec{Days: []int{int(time.Friday)}, Hour: 20, Minute: 15}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Hour)
	assert.True(t, updated.RunsOn(time.Friday))

	_, err = svc.UpdateSchedule(ctx, schedule.ID,
		service.ScheduleSpec{Days: nil, Hour: 20, Minute: 15}, user.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	require.NoError(t, svc.DeleteSchedule(ctx, schedule.ID))
	err = svc.DeleteSchedule(ctx, schedule.ID)
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}

func TestScheduleService_StartAndEndSession(t *testing.T) {
	svc, db := newScheduleService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, member := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).Build(t, db)

	session, err := svc.CreateUnscheduledSession(ctx, sessionType.ID, time.Now(), user.ID)
	require.NoError(t, err)

	started, err := svc.StartSession(ctx, session.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)
	require.NotNil(t, started.OwnerID)
	assert.Equal(t, member.ID, *started.OwnerID)

	// Starting twice keeps the original start.
	again, err := svc.StartSession(ctx, session.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, started.StartedAt.Unix(), again.StartedAt.Unix())

	ended, err := svc.EndSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, ended.Ended)
	assert.Equal(t, domain.SessionStatusEnded, ended.Status(time.Now()))

	// Ending twice is a no-op.
	final, err := svc.EndSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, ended.Ended.Unix(), final.Ended.Unix())
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository/postgres"
	"github.com/mira/workspace-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSchedule(t *testing.T, db *gorm.DB) (*domain.Workspace, *domain.SessionType, *domain.ScheduleDefinition) {
	t.Helper()
	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	sessionType := testutil.NewSessionTypeBuilder(workspace.ID).Build(t, db)
	return workspace, sessionType, &sessionType.Schedules[0]
}

func newInstance(workspace *domain.Workspace, sessionType *domain.SessionType, scheduleID *uuid.UUID, date time.Time) *domain.SessionInstance {
	return &domain.SessionInstance{
		ID:            uuid.New(),
		ScheduleID:    scheduleID,
		SessionTypeID: sessionType.ID,
		WorkspaceID:   workspace.ID,
		Date:          date,
		CreatedAt:     time.Now(),
	}
}

func TestSessionRepository_Create_DuplicateOccurrence(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(db)
	ctx := context.Background()

	workspace, sessionType, schedule := seedSchedule(t, db)
	date := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newInstance(workspace, sessionType, &schedule.ID, date)))

	// Same (schedule, date) pair collides on the occurrence index.
	err := repo.Create(ctx, newInstance(workspace, sessionType, &schedule.ID, date))
	assert.ErrorIs(t, err, domain.ErrDuplicateSession)

	// A different date for the same schedule does not.
	require.NoError(t, repo.Create(ctx, newInstance(workspace, sessionType, &schedule.ID, date.AddDate(0, 0, 7))))
}

func TestSessionRepository_Create_UnscheduledExempt(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(db)
	ctx := context.Background()

	workspace, sessionType, _ := seedSchedule(t, db)
	date := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

	// NULL schedule IDs never collide with each other.
	require.NoError(t, repo.Create(ctx, newInstance(workspace, sessionType, nil, date)))
	require.NoError(t, repo.Create(ctx, newInstance(workspace, sessionType, nil, date)))
}

func TestSessionRepository_GetByScheduleAndDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(db)
	ctx := context.Background()

	workspace, sessionType, schedule := seedSchedule(t, db)
	date := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

	created := newInstance(workspace, sessionType, &schedule.ID, date)
	require.NoError(t, repo.Create(ctx, created))

	found, err := repo.GetByScheduleAndDate(ctx, schedule.ID, date)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByScheduleAndDate(ctx, schedule.ID, date.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_Delete_CascadesAssignments(t *testing.T) {
	db := testutil.NewTestDB(t)
	sessionRepo := postgres.NewSessionRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	ctx := context.Background()

	workspace, sessionType, schedule := seedSchedule(t, db)
	role := testutil.NewRoleBuilder(workspace.ID).Build(t, db)
	member := testutil.NewMemberBuilder(workspace.ID, role.ID).Build(t, db)

	session := newInstance(workspace, sessionType, &schedule.ID, time.Now())
	require.NoError(t, sessionRepo.Create(ctx, session))

	require.NoError(t, slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: sessionType.Slots[0].ID,
		SlotIndex:  0,
		MemberID:   member.ID,
	}))

	require.NoError(t, sessionRepo.Delete(ctx, session.ID))

	assignments, err := slotRepo.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	_, err = sessionRepo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSlotRepository_Create_DuplicatePosition(t *testing.T) {
	db := testutil.NewTestDB(t)
	sessionRepo := postgres.NewSessionRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	ctx := context.Background()

	workspace, sessionType, schedule := seedSchedule(t, db)
	roleSlot := sessionType.Slots[0]

	ownerRole := testutil.NewRoleBuilder(workspace.ID).Build(t, db)
	memberA := testutil.NewMemberBuilder(workspace.ID, ownerRole.ID).Build(t, db)
	memberB := testutil.NewMemberBuilder(workspace.ID, ownerRole.ID).Build(t, db)

	session := newInstance(workspace, sessionType, &schedule.ID, time.Now())
	require.NoError(t, sessionRepo.Create(ctx, session))

	require.NoError(t, slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: roleSlot.ID,
		SlotIndex:  0,
		MemberID:   memberA.ID,
	}))

	// The same physical position is gone, whoever asks.
	err := slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: roleSlot.ID,
		SlotIndex:  0,
		MemberID:   memberB.ID,
	})
	assert.ErrorIs(t, err, domain.ErrSlotOccupied)

	// A different index is a different position.
	require.NoError(t, slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: roleSlot.ID,
		SlotIndex:  1,
		MemberID:   memberB.ID,
	}))
}

func TestSlotRepository_Create_DuplicateMemberRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	sessionRepo := postgres.NewSessionRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	ctx := context.Background()

	workspace, sessionType, schedule := seedSchedule(t, db)
	roleSlot := sessionType.Slots[1] // capacity 2

	role := testutil.NewRoleBuilder(workspace.ID).Build(t, db)
	member := testutil.NewMemberBuilder(workspace.ID, role.ID).Build(t, db)

	session := newInstance(workspace, sessionType, &schedule.ID, time.Now())
	require.NoError(t, sessionRepo.Create(ctx, session))

	require.NoError(t, slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: roleSlot.ID,
		SlotIndex:  0,
		MemberID:   member.ID,
	}))

	// The member index rejects a second position of the same role slot even
	// when the service-level check is raced past.
	err := slotRepo.Create(ctx, &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  session.ID,
		RoleSlotID: roleSlot.ID,
		SlotIndex:  1,
		MemberID:   member.ID,
	})
	assert.ErrorIs(t, err, domain.ErrSlotOccupied)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
	"github.com/mira/workspace-hub/internal/repository/postgres"
	"github.com/mira/workspace-hub/internal/service"
	"github.com/mira/workspace-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newQuotaService(t *testing.T) (*service.QuotaService, *repository.Repositories, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	audit := service.NewAuditRecorder(repos.Audit, zap.NewNop())
	svc := service.NewQuotaService(repos, audit, testutil.TestConfig().AdjustmentCeilingMinutes)
	return svc, repos, db
}

func TestQuotaService_EffectiveMinutes(t *testing.T) {
	svc, _, db := newQuotaService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	// One 40-minute tracked span earlier today.
	testutil.NewActivityBuilder(user.ID, workspace.ID).
		WithSpan(time.Now().Add(-2*time.Hour), time.Now().Add(-80*time.Minute)).
		Build(t, db)

	for _, minutes := range []int{20, -5} {
		_, err := svc.CreateAdjustment(ctx, service.CreateAdjustmentInput{
			UserID:      user.ID,
			WorkspaceID: workspace.ID,
			ActorID:     user.ID,
			Minutes:     minutes,
			Reason:      "correction",
		})
		require.NoError(t, err)
	}

	period, err := svc.CurrentPeriod(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Equal(t, workspace.CreatedAt.Unix(), period.Start.Unix())

	minutes, err := svc.EffectiveMinutes(ctx, user.ID, workspace.ID, period)
	require.NoError(t, err)
	assert.Equal(t, 55, minutes)
}

func TestQuotaService_CreateAdjustment_Validation(t *testing.T) {
	svc, _, db := newQuotaService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	for _, minutes := range []int{0, 1001, -1001} {
		_, err := svc.CreateAdjustment(ctx, service.CreateAdjustmentInput{
			UserID:      user.ID,
			WorkspaceID: workspace.ID,
			ActorID:     user.ID,
			Minutes:     minutes,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAdjustment, "minutes=%d", minutes)
	}

	// The ceiling itself is allowed, in both directions.
	for _, minutes := range []int{1000, -1000} {
		_, err := svc.CreateAdjustment(ctx, service.CreateAdjustmentInput{
			UserID:      user.ID,
			WorkspaceID: workspace.ID,
			ActorID:     user.ID,
			Minutes:     minutes,
		})
		require.NoError(t, err)
	}
}

func TestQuotaService_ClosePeriod(t *testing.T) {
	svc, _, db := newQuotaService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, role, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	// A second member with no activity should not get a history row.
	testutil.NewMemberBuilder(workspace.ID, role.ID).Build(t, db)

	testutil.NewActivityBuilder(user.ID, workspace.ID).
		WithSpan(time.Now().Add(-2*time.Hour), time.Now().Add(-80*time.Minute)).
		WithMessages(3).
		Build(t, db)
	_, err := svc.CreateAdjustment(ctx, service.CreateAdjustmentInput{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		ActorID:     user.ID,
		Minutes:     15,
		Reason:      "event bonus",
	})
	require.NoError(t, err)

	rows, err := svc.ClosePeriod(ctx, workspace.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, user.ID, rows[0].UserID)
	assert.Equal(t, 55, rows[0].Minutes)
	assert.Equal(t, 3, rows[0].Messages)

	var resets []domain.ActivityReset
	require.NoError(t, db.Where("workspace_id = ?", workspace.ID).Find(&resets).Error)
	require.Len(t, resets, 1)

	// The next period starts at the reset marker and begins empty.
	period, err := svc.CurrentPeriod(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Equal(t, resets[0].ResetAt.Unix(), period.Start.Unix())

	minutes, err := svc.EffectiveMinutes(ctx, user.ID, workspace.ID, period)
	require.NoError(t, err)
	assert.Zero(t, minutes)
}

func TestQuotaService_MemberQuotaReport(t *testing.T) {
	svc, repos, db := newQuotaService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, role, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	testutil.NewActivityBuilder(user.ID, workspace.ID).
		WithSpan(time.Now().Add(-2*time.Hour), time.Now().Add(-70*time.Minute)).
		WithMessages(6).
		Build(t, db)

	minutesQuota := &domain.Quota{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		Name:        "Weekly minutes",
		Type:        domain.QuotaTypeMinutes,
		Value:       100,
	}
	messagesQuota := &domain.Quota{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		Name:        "Weekly messages",
		Type:        domain.QuotaTypeMessages,
		Value:       4,
	}
	require.NoError(t, repos.Quota.Create(ctx, minutesQuota))
	require.NoError(t, repos.Quota.Create(ctx, messagesQuota))
	require.NoError(t, repos.Quota.LinkRole(ctx, minutesQuota.ID, role.ID))
	require.NoError(t, repos.Quota.LinkRole(ctx, messagesQuota.ID, role.ID))

	standings, err := svc.MemberQuotaReport(ctx, user.ID, workspace.ID)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	byName := make(map[string]domain.QuotaStanding, len(standings))
	for _, standing := range standings {
		byName[standing.Quota.Name] = standing
	}

	minutesStanding := byName["Weekly minutes"]
	assert.Equal(t, 50, minutesStanding.Current)
	assert.Equal(t, 50, minutesStanding.Percentage)

	// Completion is clamped at 100.
	messagesStanding := byName["Weekly messages"]
	assert.Equal(t, 6, messagesStanding.Current)
	assert.Equal(t, 100, messagesStanding.Percentage)
}

func TestQuotaService_MemberQuotaReport_NoQuotas(t *testing.T) {
	svc, _, db := newQuotaService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(user).Build(t, db)

	standings, err := svc.MemberQuotaReport(ctx, user.ID, workspace.ID)
	require.NoError(t, err)
	assert.Empty(t, standings)
}

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
	"gorm.io/gorm"
)

func newPermissionService(t *testing.T) (*service.PermissionService, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	return service.NewPermissionService(repos.Member, 128, time.Minute), db
}

func TestPermissionService_OwnerBypass(t *testing.T) {
	svc, db := newPermissionService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, db)
	workspace, _, _ := testutil.NewWorkspaceBuilder().WithOwner(owner).Build(t, db)

	// The owner role stores no permissions yet passes every check.
	for _, capability := range domain.AllCapabilities {
		assert.NoError(t, svc.Can(ctx, owner.ID, workspace.ID, capability))
	}
}

func TestPermissionService_CapabilityGate(t *testing.T) {
	svc, db := newPermissionService(t)
	ctx := context.Background()

	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	role := testutil.NewRoleBuilder(workspace.ID).
		WithPermissions(domain.CapManageSessions, domain.CapViewReports).
		Build(t, db)
	member := testutil.NewMemberBuilder(workspace.ID, role.ID).Build(t, db)

	assert.NoError(t, svc.Can(ctx, member.UserID, workspace.ID, domain.CapManageSessions))
	assert.ErrorIs(t, svc.Can(ctx, member.UserID, workspace.ID, domain.CapAdmin), domain.ErrForbidden)

	// Any one of the listed capabilities is enough.
	assert.NoError(t, svc.CanAny(ctx, member.UserID, workspace.ID, domain.CapAdmin, domain.CapViewReports))
	assert.ErrorIs(t, svc.CanAny(ctx, member.UserID, workspace.ID, domain.CapAdmin, domain.CapManageQuotas), domain.ErrForbidden)
}

func TestPermissionService_NonMember(t *testing.T) {
	svc, db := newPermissionService(t)
	ctx := context.Background()

	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	stranger, _ := testutil.NewUserBuilder().Build(t, db)

	assert.ErrorIs(t, svc.Can(ctx, stranger.ID, workspace.ID, domain.CapViewReports), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Can(ctx, uuid.New(), workspace.ID, domain.CapViewReports), domain.ErrForbidden)
}

func TestPermissionService_Invalidate(t *testing.T) {
	svc, db := newPermissionService(t)
	ctx := context.Background()

	workspace, _, _ := testutil.NewWorkspaceBuilder().Build(t, db)
	role := testutil.NewRoleBuilder(workspace.ID).
		WithPermissions(domain.CapManageActivity).
		Build(t, db)
	member := testutil.NewMemberBuilder(workspace.ID, role.ID).Build(t, db)

	// Prime the cache.
	require.NoError(t, svc.Can(ctx, member.UserID, workspace.ID, domain.CapManageActivity))

	// Revoke the permission behind the cache's back.
	require.NoError(t, db.Model(&domain.Role{}).
		Where("id = ?", role.ID).
		Update("permissions", `[]`).Error)

	// The cached role still answers until it is invalidated.
	assert.NoError(t, svc.Can(ctx, member.UserID, workspace.ID, domain.CapManageActivity))

	svc.Invalidate(member.UserID, workspace.ID)
	assert.ErrorIs(t, svc.Can(ctx, member.UserID, workspace.ID, domain.CapManageActivity), domain.ErrForbidden)
}

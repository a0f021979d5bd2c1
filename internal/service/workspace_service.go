package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
	"gorm.io/datatypes"
)

// WorkspaceService manages workspaces, their roles and memberships, and the
// quota definitions attached to roles.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	memberRepo    repository.MemberRepository
	roleRepo      repository.RoleRepository
	quotaRepo     repository.QuotaRepository
	permissions   *PermissionService
	audit         *AuditRecorder
}

func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	memberRepo repository.MemberRepository,
	roleRepo repository.RoleRepository,
	quotaRepo repository.QuotaRepository,
	permissions *PermissionService,
	audit *AuditRecorder,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		roleRepo:      roleRepo,
		quotaRepo:     quotaRepo,
		permissions:   permissions,
		audit:         audit,
	}
}

// CreateWorkspace registers a new workspace with the creator as its owner. An
// owner role is created alongside; it needs no stored permissions since owner
// membership bypasses every capability check.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, name string, groupID int64, ownerUserID uuid.UUID) (*domain.Workspace, error) {
	now := time.Now()
	workspace := &domain.Workspace{
		ID:        uuid.New(),
		Name:      name,
		GroupID:   groupID,
		OwnerID:   ownerUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}

	ownerRole := &domain.Role{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		Name:        "Owner",
		Permissions: datatypes.JSON(`[]`),
		IsOwnerRole: true,
	}
	if err := s.roleRepo.Create(ctx, ownerRole); err != nil {
		return nil, err
	}

	member := &domain.Member{
		ID:          uuid.New(),
		UserID:      ownerUserID,
		WorkspaceID: workspace.ID,
		RoleID:      ownerRole.ID,
		JoinedAt:    now,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspace.ID, ownerUserID, "workspace.create", workspace.ID.String(), map[string]any{
		"name":    name,
		"groupId": groupID,
	})
	return workspace, nil
}

// ListRoles returns the workspace's roles. Any member may read them.
func (s *WorkspaceService) ListRoles(ctx context.Context, actorID, workspaceID uuid.UUID) ([]*domain.Role, error) {
	if _, err := s.memberRepo.GetByUserAndWorkspace(ctx, actorID, workspaceID); err != nil {
		return nil, domain.ErrForbidden
	}
	return s.roleRepo.ListByWorkspace(ctx, workspaceID)
}

// CreateRole adds a staff role holding the given capabilities. Unknown
// capability strings are rejected rather than silently dropped; the lenient
// decoding is reserved for rows already at rest.
func (s *WorkspaceService) CreateRole(ctx context.Context, actorID, workspaceID uuid.UUID, name string, capabilities []string) (*domain.Role, error) {
	if err := s.permissions.CanAny(ctx, actorID, workspaceID, domain.CapManageMembers, domain.CapAdmin); err != nil {
		return nil, err
	}

	perms, err := encodeCapabilities(capabilities)
	if err != nil {
		return nil, err
	}

	role := &domain.Role{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		Permissions: perms,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspaceID, actorID, "role.create", role.ID.String(), map[string]any{
		"name":        name,
		"permissions": capabilities,
	})
	return role, nil
}

// UpdateRolePermissions replaces a role's permission set. Cached role lookups
// for the role's holders age out within the cache TTL.
func (s *WorkspaceService) UpdateRolePermissions(ctx context.Context, actorID, workspaceID, roleID uuid.UUID, capabilities []string) (*domain.Role, error) {
	if err := s.permissions.CanAny(ctx, actorID, workspaceID, domain.CapManageMembers, domain.CapAdmin); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.WorkspaceID != workspaceID {
		return nil, domain.ErrRoleNotFound
	}

	perms, err := encodeCapabilities(capabilities)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspaceID, actorID, "role.update", role.ID.String(), map[string]any{
		"permissions": capabilities,
	})
	return role, nil
}

// AddMember attaches a user to the workspace under the given role. The
// membership unique index rejects a second row for the same user.
func (s *WorkspaceService) AddMember(ctx context.Context, actorID, workspaceID, userID, roleID uuid.UUID) (*domain.Member, error) {
	if err := s.permissions.CanAny(ctx, actorID, workspaceID, domain.CapManageMembers, domain.CapAdmin); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.WorkspaceID != workspaceID {
		return nil, domain.ErrRoleNotFound
	}

	member := &domain.Member{
		ID:          uuid.New(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		RoleID:      roleID,
		JoinedAt:    time.Now(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspaceID, actorID, "member.add", member.ID.String(), map[string]any{
		"userId": userID.String(),
		"roleId": roleID.String(),
	})
	return member, nil
}

// ListMembers returns the workspace roster with roles preloaded.
func (s *WorkspaceService) ListMembers(ctx context.Context, actorID, workspaceID uuid.UUID) ([]*domain.Member, error) {
	if _, err := s.memberRepo.GetByUserAndWorkspace(ctx, actorID, workspaceID); err != nil {
		return nil, domain.ErrForbidden
	}
	return s.memberRepo.ListByWorkspace(ctx, workspaceID)
}

type CreateQuotaInput struct {
	Name    string
	Type    domain.QuotaType
	Value   int
	RoleIDs []uuid.UUID
}

// CreateQuota defines a per-period target and links it to the given roles.
func (s *WorkspaceService) CreateQuota(ctx context.Context, actorID, workspaceID uuid.UUID, input CreateQuotaInput) (*domain.Quota, error) {
	if err := s.permissions.CanAny(ctx, actorID, workspaceID, domain.CapManageQuotas, domain.CapAdmin); err != nil {
		return nil, err
	}

	quota := &domain.Quota{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        input.Name,
		Type:        input.Type,
		Value:       input.Value,
	}
	if err := s.quotaRepo.Create(ctx, quota); err != nil {
		return nil, err
	}

	for _, roleID := range input.RoleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role.WorkspaceID != workspaceID {
			return nil, domain.ErrRoleNotFound
		}
		if err := s.quotaRepo.LinkRole(ctx, quota.ID, roleID); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, workspaceID, actorID, "quota.create", quota.ID.String(), map[string]any{
		"name":  input.Name,
		"type":  string(input.Type),
		"value": input.Value,
	})
	return quota, nil
}

func encodeCapabilities(raw []string) (datatypes.JSON, error) {
	caps := make([]string, 0, len(raw))
	for _, s := range raw {
		c, ok := domain.ParseCapability(s)
		if !ok {
			return nil, domain.ErrInvalidCapability
		}
		caps = append(caps, c.String())
	}
	encoded, err := json.Marshal(caps)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
)

// PermissionService is the single gate every mutating operation goes
// through. Role lookups are cached with a TTL so a burst of requests from one
// actor costs one membership query; the cache is owned here and injected via
// construction, never package state.
type PermissionService struct {
	memberRepo repository.MemberRepository
	roleCache  *expirable.LRU[string, *domain.Role]
}

func NewPermissionService(memberRepo repository.MemberRepository, cacheSize int, cacheTTL time.Duration) *PermissionService {
	return &PermissionService{
		memberRepo: memberRepo,
		roleCache:  expirable.NewLRU[string, *domain.Role](cacheSize, nil, cacheTTL),
	}
}

// Can returns nil when the actor's role grants the capability, or
// domain.ErrForbidden otherwise. Actors with no membership in the workspace
// are rejected with the same uniform error.
func (s *PermissionService) Can(ctx context.Context, userID, workspaceID uuid.UUID, capability domain.Capability) error {
	return s.CanAny(ctx, userID, workspaceID, capability)
}

// CanAny passes when any one of the capabilities is granted. Some operations
// are legitimately reachable through more than one permission.
func (s *PermissionService) CanAny(ctx context.Context, userID, workspaceID uuid.UUID, capabilities ...domain.Capability) error {
	role, err := s.roleFor(ctx, userID, workspaceID)
	if err != nil {
		return domain.ErrForbidden
	}

	if role.IsOwnerRole {
		return nil
	}
	for _, c := range capabilities {
		if role.HasCapability(c) {
			return nil
		}
	}
	return domain.ErrForbidden
}

// Invalidate drops the cached role for an actor, used after role edits.
func (s *PermissionService) Invalidate(userID, workspaceID uuid.UUID) {
	s.roleCache.Remove(cacheKey(userID, workspaceID))
}

func (s *PermissionService) roleFor(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Role, error) {
	key := cacheKey(userID, workspaceID)
	if role, ok := s.roleCache.Get(key); ok {
		return role, nil
	}

	member, err := s.memberRepo.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if member.Role == nil {
		return nil, domain.ErrRoleNotFound
	}

	s.roleCache.Add(key, member.Role)
	return member.Role, nil
}

func cacheKey(userID, workspaceID uuid.UUID) string {
	return userID.String() + "|" + workspaceID.String()
}

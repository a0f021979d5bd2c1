package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
)

// SlotService places members into capacity-limited role slots of a session.
// Occupancy is arbitrated by the slot unique index, so concurrent claims for
// the same position resolve to one winner even across process instances.
type SlotService struct {
	slotRepo        repository.SlotRepository
	sessionRepo     repository.SessionRepository
	sessionTypeRepo repository.SessionTypeRepository
	memberRepo      repository.MemberRepository
}

func NewSlotService(
	slotRepo repository.SlotRepository,
	sessionRepo repository.SessionRepository,
	sessionTypeRepo repository.SessionTypeRepository,
	memberRepo repository.MemberRepository,
) *SlotService {
	return &SlotService{
		slotRepo:        slotRepo,
		sessionRepo:     sessionRepo,
		sessionTypeRepo: sessionTypeRepo,
		memberRepo:      memberRepo,
	}
}

// AssignSlot claims one physical slot for a member. Errors:
// domain.ErrSlotOccupied when the position is taken or the member already
// holds another index of the same role slot; domain.ErrMemberNotInWorkspace
// when the member does not belong to the session's workspace;
// domain.ErrInvalidSlotIndex when the index is outside the slot capacity.
// On success the session's full assignment set is returned so callers can
// render without a second read.
func (s *SlotService) AssignSlot(ctx context.Context, sessionID, roleSlotID uuid.UUID, slotIndex int, memberID uuid.UUID) ([]*domain.SlotAssignment, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.WorkspaceID != session.WorkspaceID {
		return nil, domain.ErrMemberNotInWorkspace
	}

	sessionType, err := s.sessionTypeRepo.GetByID(ctx, session.SessionTypeID)
	if err != nil {
		return nil, err
	}
	slot := findSlot(sessionType, roleSlotID)
	if slot == nil {
		return nil, domain.ErrNotFound
	}
	if slotIndex < 0 || slotIndex >= slot.Capacity {
		return nil, domain.ErrInvalidSlotIndex
	}

	// One slot per member per role per session, regardless of index. The
	// member unique index arbitrates claims that race past this check.
	taken, err := s.slotRepo.ExistsForMemberRole(ctx, sessionID, roleSlotID, memberID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlotOccupied
	}

	assignment := &domain.SlotAssignment{
		ID:         uuid.New(),
		SessionID:  sessionID,
		RoleSlotID: roleSlotID,
		SlotIndex:  slotIndex,
		MemberID:   memberID,
	}
	if err := s.slotRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, domain.ErrSlotOccupied) {
			return nil, domain.ErrSlotOccupied
		}
		return nil, err
	}

	return s.slotRepo.ListBySession(ctx, sessionID)
}

// UnassignSlot releases a slot. Releasing an empty slot is not an error.
func (s *SlotService) UnassignSlot(ctx context.Context, sessionID, roleSlotID uuid.UUID, slotIndex int) ([]*domain.SlotAssignment, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	if _, err := s.slotRepo.Delete(ctx, sessionID, roleSlotID, slotIndex); err != nil {
		return nil, err
	}
	return s.slotRepo.ListBySession(ctx, sessionID)
}

// SessionAssignments returns the current assignment set for a session.
func (s *SlotService) SessionAssignments(ctx context.Context, sessionID uuid.UUID) ([]*domain.SlotAssignment, error) {
	return s.slotRepo.ListBySession(ctx, sessionID)
}

func findSlot(sessionType *domain.SessionType, roleSlotID uuid.UUID) *domain.RoleSlot {
	for i := range sessionType.Slots {
		if sessionType.Slots[i].ID == roleSlotID {
			return &sessionType.Slots[i]
		}
	}
	return nil
}

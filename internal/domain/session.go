package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusEnded      SessionStatus = "ended"
	SessionStatusMissed     SessionStatus = "missed"
)

// SessionInstance is one concrete materialization of a schedule on a date.
// Instances are created lazily, at most one per (schedule, date) pair;
// unscheduled one-off sessions carry a nil ScheduleID and are exempt.
type SessionInstance struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ScheduleID    *uuid.UUID `json:"scheduleId" gorm:"type:uuid;uniqueIndex:idx_session_occurrence"`
	SessionTypeID uuid.UUID  `json:"sessionTypeId" gorm:"type:uuid;not null"`
	WorkspaceID   uuid.UUID  `json:"workspaceId" gorm:"type:uuid;not null"`
	Date          time.Time  `json:"date" gorm:"not null;uniqueIndex:idx_session_occurrence"`
	StartedAt     *time.Time `json:"startedAt"`
	Ended         *time.Time `json:"ended"`
	OwnerID       *uuid.UUID `json:"ownerId" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"createdAt"`

	Assignments []SlotAssignment `json:"assignments,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// Status derives the lifecycle state from the timestamp fields.
func (s *SessionInstance) Status(now time.Time) SessionStatus {
	switch {
	case s.Ended != nil:
		return SessionStatusEnded
	case s.StartedAt != nil:
		return SessionStatusInProgress
	case s.Date.Before(now):
		return SessionStatusMissed
	default:
		return SessionStatusScheduled
	}
}

// SlotAssignment places a member into one physical slot of a session. The
// (session, role slot, index) triple is unique so two members can never hold
// the same position.
type SlotAssignment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SessionID  uuid.UUID `json:"sessionId" gorm:"type:uuid;not null;uniqueIndex:idx_session_slot;uniqueIndex:idx_slot_member"`
	RoleSlotID uuid.UUID `json:"roleSlotId" gorm:"type:uuid;not null;uniqueIndex:idx_session_slot;uniqueIndex:idx_slot_member"`
	SlotIndex  int       `json:"slotIndex" gorm:"not null;uniqueIndex:idx_session_slot"`
	MemberID   uuid.UUID `json:"memberId" gorm:"type:uuid;not null;uniqueIndex:idx_slot_member"`
	CreatedAt  time.Time `json:"createdAt"`

	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

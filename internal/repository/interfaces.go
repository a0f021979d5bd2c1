package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type UserSessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	// GetByUserAndWorkspace preloads the member's role.
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Member, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Member, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
}

type SessionTypeRepository interface {
	Create(ctx context.Context, sessionType *domain.SessionType) error
	// GetByID preloads the type's schedules and role slots.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionType, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.SessionType, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.ScheduleDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduleDefinition, error)
	Update(ctx context.Context, schedule *domain.ScheduleDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	// Create returns domain.ErrDuplicateSession when another instance already
	// holds the (schedule, date) pair.
	Create(ctx context.Context, session *domain.SessionInstance) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionInstance, error)
	GetByScheduleAndDate(ctx context.Context, scheduleID uuid.UUID, date time.Time) (*domain.SessionInstance, error)
	ListByWorkspaceBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*domain.SessionInstance, error)
	CountHostedBetween(ctx context.Context, ownerID, workspaceID uuid.UUID, start, end time.Time) (int64, error)
	Update(ctx context.Context, session *domain.SessionInstance) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SlotRepository interface {
	// Create returns domain.ErrSlotOccupied when the (session, role slot,
	// index) triple is already taken.
	Create(ctx context.Context, assignment *domain.SlotAssignment) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SlotAssignment, error)
	ExistsForMemberRole(ctx context.Context, sessionID, roleSlotID, memberID uuid.UUID) (bool, error)
	// Delete removes the assignment at the slot; returns the number of rows
	// removed so callers can distinguish a no-op.
	Delete(ctx context.Context, sessionID, roleSlotID uuid.UUID, slotIndex int) (int64, error)
	CountAttendedBetween(ctx context.Context, memberID uuid.UUID, start, end time.Time) (int64, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, session *domain.ActivitySession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivitySession, error)
	Update(ctx context.Context, session *domain.ActivitySession) error
	ListActive(ctx context.Context) ([]*domain.ActivitySession, error)
	ListByUserBetween(ctx context.Context, userID, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error)
	ListByWorkspaceBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error)
	ListOverlapping(ctx context.Context, workspaceID, excludeID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error)
	IncrementMessages(ctx context.Context, id uuid.UUID) error
}

type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *domain.ActivityAdjustment) error
	ListByUserBetween(ctx context.Context, userID, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivityAdjustment, error)
}

type HistoryRepository interface {
	// SnapshotPeriod writes the history rows and the reset marker in one
	// transaction so a crash cannot record a reset without its snapshot.
	SnapshotPeriod(ctx context.Context, rows []*domain.ActivityHistory, reset *domain.ActivityReset) error
	ListByUser(ctx context.Context, userID, workspaceID uuid.UUID) ([]*domain.ActivityHistory, error)
	GetLatestReset(ctx context.Context, workspaceID uuid.UUID) (*domain.ActivityReset, error)
}

type QuotaRepository interface {
	Create(ctx context.Context, quota *domain.Quota) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quota, error)
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]*domain.Quota, error)
	LinkRole(ctx context.Context, quotaID, roleID uuid.UUID) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type Repositories struct {
	User        UserRepository
	UserSession UserSessionRepository
	Workspace   WorkspaceRepository
	Member      MemberRepository
	Role        RoleRepository
	SessionType SessionTypeRepository
	Schedule    ScheduleRepository
	Session     SessionRepository
	Slot        SlotRepository
	Activity    ActivityRepository
	Adjustment  AdjustmentRepository
	History     HistoryRepository
	Quota       QuotaRepository
	Audit       AuditRepository
}

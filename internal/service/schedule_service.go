package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
)

// ScheduleService expands recurring schedules into concrete session
// instances and materializes them idempotently.
type ScheduleService struct {
	scheduleRepo    repository.ScheduleRepository
	sessionRepo     repository.SessionRepository
	sessionTypeRepo repository.SessionTypeRepository
	memberRepo      repository.MemberRepository
	audit           *AuditRecorder
}

func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	sessionRepo repository.SessionRepository,
	sessionTypeRepo repository.SessionTypeRepository,
	memberRepo repository.MemberRepository,
	audit *AuditRecorder,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo:    scheduleRepo,
		sessionRepo:     sessionRepo,
		sessionTypeRepo: sessionTypeRepo,
		memberRepo:      memberRepo,
		audit:           audit,
	}
}

type SlotSpec struct {
	Name     string
	Capacity int
}

type ScheduleSpec struct {
	Days   []int
	Hour   int
	Minute int
}

// CreateSessionType defines a kind of recurring session together with its
// role slots and weekly schedules. Children are created in one association
// write so a half-defined type never becomes visible.
func (s *ScheduleService) CreateSessionType(ctx context.Context, workspaceID uuid.UUID, name string, slots []SlotSpec, schedules []ScheduleSpec, actorID uuid.UUID) (*domain.SessionType, error) {
	sessionType := &domain.SessionType{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedAt:   time.Now(),
	}

	for _, spec := range schedules {
		schedule := domain.ScheduleDefinition{
			ID:            uuid.New(),
			SessionTypeID: sessionType.ID,
			DaysOfWeek:    spec.Days,
			Hour:          spec.Hour,
			Minute:        spec.Minute,
		}
		if err := schedule.Validate(); err != nil {
			return nil, err
		}
		sessionType.Schedules = append(sessionType.Schedules, schedule)
	}
	for _, spec := range slots {
		if spec.Capacity < 1 {
			return nil, domain.ErrInvalidSlotIndex
		}
		sessionType.Slots = append(sessionType.Slots, domain.RoleSlot{
			ID:            uuid.New(),
			SessionTypeID: sessionType.ID,
			Name:          spec.Name,
			Capacity:      spec.Capacity,
		})
	}

	if err := s.sessionTypeRepo.Create(ctx, sessionType); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspaceID, actorID, "session_type.create", sessionType.ID.String(), map[string]any{
		"name":      name,
		"slots":     len(slots),
		"schedules": len(schedules),
	})
	return sessionType, nil
}

// ListSessionTypes returns the workspace's session types with schedules and
// slots preloaded. Any member may read them.
func (s *ScheduleService) ListSessionTypes(ctx context.Context, actorUserID, workspaceID uuid.UUID) ([]*domain.SessionType, error) {
	if _, err := s.memberRepo.GetByUserAndWorkspace(ctx, actorUserID, workspaceID); err != nil {
		return nil, domain.ErrForbidden
	}
	return s.sessionTypeRepo.ListByWorkspace(ctx, workspaceID)
}

// UpdateSchedule replaces a schedule's weekly pattern.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, scheduleID uuid.UUID, spec ScheduleSpec, actorID uuid.UUID) (*domain.ScheduleDefinition, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	schedule.DaysOfWeek = spec.Days
	schedule.Hour = spec.Hour
	schedule.Minute = spec.Minute
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}

	sessionType, err := s.sessionTypeRepo.GetByID(ctx, schedule.SessionTypeID)
	if err == nil {
		s.audit.Record(ctx, sessionType.WorkspaceID, actorID, "schedule.update", schedule.ID.String(), map[string]any{
			"days":   spec.Days,
			"hour":   spec.Hour,
			"minute": spec.Minute,
		})
	}
	return schedule, nil
}

// DeleteSchedule removes a recurring schedule. Existing session instances
// keep their (now dangling) schedule reference for history.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	if _, err := s.scheduleRepo.GetByID(ctx, scheduleID); err != nil {
		return err
	}
	return s.scheduleRepo.Delete(ctx, scheduleID)
}

// ExpandOccurrence resolves a schedule's occurrence on the probe date in the
// caller's locale. Returns domain.ErrNoOccurrence when the schedule does not
// run on that weekday.
func (s *ScheduleService) ExpandOccurrence(ctx context.Context, scheduleID uuid.UUID, probeMillis int64, offsetMinutes int) (time.Time, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return time.Time{}, err
	}
	if err := schedule.Validate(); err != nil {
		return time.Time{}, err
	}
	return schedule.OccurrenceOn(probeMillis, offsetMinutes)
}

// GetOrCreateSession fetches the session instance for (schedule, instant),
// creating it if absent. Safe under concurrent callers: the occurrence unique
// index arbitrates creation and the loser reads the winner's row.
func (s *ScheduleService) GetOrCreateSession(ctx context.Context, scheduleID uuid.UUID, instant time.Time) (*domain.SessionInstance, error) {
	existing, err := s.sessionRepo.GetByScheduleAndDate(ctx, scheduleID, instant)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	sessionType, err := s.sessionTypeRepo.GetByID(ctx, schedule.SessionTypeID)
	if err != nil {
		return nil, err
	}

	session := &domain.SessionInstance{
		ID:            uuid.New(),
		ScheduleID:    &schedule.ID,
		SessionTypeID: sessionType.ID,
		WorkspaceID:   sessionType.WorkspaceID,
		Date:          instant,
		CreatedAt:     time.Now(),
	}

	err = s.sessionRepo.Create(ctx, session)
	if errors.Is(err, domain.ErrDuplicateSession) {
		// Lost the creation race; the winner's row is authoritative.
		return s.sessionRepo.GetByScheduleAndDate(ctx, scheduleID, instant)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateUnscheduledSession materializes a one-off session with no backing
// schedule. These are exempt from the occurrence uniqueness rule.
func (s *ScheduleService) CreateUnscheduledSession(ctx context.Context, sessionTypeID uuid.UUID, date time.Time, actorID uuid.UUID) (*domain.SessionInstance, error) {
	sessionType, err := s.sessionTypeRepo.GetByID(ctx, sessionTypeID)
	if err != nil {
		return nil, err
	}

	session := &domain.SessionInstance{
		ID:            uuid.New(),
		SessionTypeID: sessionType.ID,
		WorkspaceID:   sessionType.WorkspaceID,
		Date:          date,
		CreatedAt:     time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, sessionType.WorkspaceID, actorID, "session.create", session.ID.String(), map[string]any{
		"sessionTypeId": sessionTypeID.String(),
		"date":          date,
	})
	return session, nil
}

// StartSession marks a session in progress and records the acting member as
// its host.
func (s *ScheduleService) StartSession(ctx context.Context, sessionID, actorUserID uuid.UUID) (*domain.SessionInstance, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.StartedAt != nil {
		return session, nil
	}

	member, err := s.memberRepo.GetByUserAndWorkspace(ctx, actorUserID, session.WorkspaceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.StartedAt = &now
	session.OwnerID = &member.ID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EndSession closes a started session; ending an already-ended session is a
// no-op.
func (s *ScheduleService) EndSession(ctx context.Context, sessionID uuid.UUID) (*domain.SessionInstance, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Ended != nil {
		return session, nil
	}

	now := time.Now()
	session.Ended = &now
	if session.StartedAt == nil {
		session.StartedAt = &now
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
	"go.uber.org/zap"
)

// ActivityEventType identifies a live-activity transition published to feed
// subscribers.
type ActivityEventType string

const (
	ActivityOpened ActivityEventType = "activity_opened"
	ActivityClosed ActivityEventType = "activity_closed"
)

// ActivityEvent is broadcast to workspace dashboards when live activity
// changes.
type ActivityEvent struct {
	Type        ActivityEventType `json:"type"`
	SessionID   uuid.UUID         `json:"sessionId"`
	UserID      uuid.UUID         `json:"userId"`
	WorkspaceID uuid.UUID         `json:"workspaceId"`
	At          time.Time         `json:"at"`
}

// EventPublisher delivers activity events to connected clients. Publishing is
// best-effort; the engine never blocks on it.
type EventPublisher interface {
	PublishActivity(workspaceID uuid.UUID, event ActivityEvent)
}

// ActivityService tracks open-ended live activity sessions and reconciles
// them across process restarts.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	publisher    EventPublisher
	logger       *zap.Logger

	sweepOnce sync.Once
}

func NewActivityService(activityRepo repository.ActivityRepository, publisher EventPublisher, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// OpenActivity starts a live session. A user may hold several live sessions
// at once; that condition is surfaced by FindOverlapping rather than blocked,
// since callers may track concurrent hosting across session types.
func (s *ActivityService) OpenActivity(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.ActivitySession, error) {
	session := &domain.ActivitySession{
		ID:          uuid.New(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		StartTime:   time.Now(),
		Active:      true,
	}
	if err := s.activityRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish(workspaceID, ActivityEvent{
		Type:        ActivityOpened,
		SessionID:   session.ID,
		UserID:      userID,
		WorkspaceID: workspaceID,
		At:          session.StartTime,
	})
	return session, nil
}

// GetActivity returns one tracked session.
func (s *ActivityService) GetActivity(ctx context.Context, sessionID uuid.UUID) (*domain.ActivitySession, error) {
	return s.activityRepo.GetByID(ctx, sessionID)
}

// CloseActivity ends a live session. Closing an already-closed session is a
// no-op.
func (s *ActivityService) CloseActivity(ctx context.Context, sessionID uuid.UUID) (*domain.ActivitySession, error) {
	session, err := s.activityRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active && session.EndTime != nil {
		return session, nil
	}

	now := time.Now()
	session.EndTime = &now
	session.Active = false
	if err := s.activityRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.publish(session.WorkspaceID, ActivityEvent{
		Type:        ActivityClosed,
		SessionID:   session.ID,
		UserID:      session.UserID,
		WorkspaceID: session.WorkspaceID,
		At:          now,
	})
	return session, nil
}

// RecordMessage bumps the message counter of a live session; counts against
// closed sessions are dropped.
func (s *ActivityService) RecordMessage(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.activityRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Active {
		return nil
	}
	return s.activityRepo.IncrementMessages(ctx, sessionID)
}

// ReconcileOnStartup force-closes every session left live by an unclean
// shutdown of a previous process instance. It runs once per process
// lifetime; per-row failures are logged and retried on the next boot, never
// fatal. A stuck live row is a data-quality issue, not a crash.
func (s *ActivityService) ReconcileOnStartup(ctx context.Context) int {
	closed := 0
	s.sweepOnce.Do(func() {
		sessions, err := s.activityRepo.ListActive(ctx)
		if err != nil {
			s.logger.Error("startup reconciliation sweep failed", zap.Error(err))
			return
		}

		now := time.Now()
		for _, session := range sessions {
			session.EndTime = &now
			session.Active = false
			if err := s.activityRepo.Update(ctx, session); err != nil {
				s.logger.Warn("failed to force-close stale activity session",
					zap.String("session_id", session.ID.String()),
					zap.Error(err))
				continue
			}
			closed++
		}

		if closed > 0 {
			s.logger.Info("closed stale activity sessions", zap.Int("count", closed))
		}
	})
	return closed
}

// FindOverlapping returns every other session in the workspace whose
// interval intersects [start, end], deduplicated by user. A live session has
// no upper bound and always satisfies the probe's end. Informational only;
// overlaps are surfaced, not blocked.
func (s *ActivityService) FindOverlapping(ctx context.Context, sessionID uuid.UUID, start, end time.Time, workspaceID uuid.UUID) ([]*domain.ActivitySession, error) {
	candidates, err := s.activityRepo.ListOverlapping(ctx, workspaceID, sessionID, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(candidates))
	overlaps := make([]*domain.ActivitySession, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate.UserID]; ok {
			continue
		}
		seen[candidate.UserID] = struct{}{}
		overlaps = append(overlaps, candidate)
	}
	return overlaps, nil
}

func (s *ActivityService) publish(workspaceID uuid.UUID, event ActivityEvent) {
	if s.publisher != nil {
		s.publisher.PublishActivity(workspaceID, event)
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
)

// QuotaService aggregates per-period activity into quota standings and owns
// the period lifecycle.
type QuotaService struct {
	activityRepo   repository.ActivityRepository
	adjustmentRepo repository.AdjustmentRepository
	historyRepo    repository.HistoryRepository
	sessionRepo    repository.SessionRepository
	slotRepo       repository.SlotRepository
	memberRepo     repository.MemberRepository
	workspaceRepo  repository.WorkspaceRepository
	quotaRepo      repository.QuotaRepository
	audit          *AuditRecorder

	adjustmentCeiling int
}

func NewQuotaService(
	repos *repository.Repositories,
	audit *AuditRecorder,
	adjustmentCeiling int,
) *QuotaService {
	return &QuotaService{
		activityRepo:      repos.Activity,
		adjustmentRepo:    repos.Adjustment,
		historyRepo:       repos.History,
		sessionRepo:       repos.Session,
		slotRepo:          repos.Slot,
		memberRepo:        repos.Member,
		workspaceRepo:     repos.Workspace,
		quotaRepo:         repos.Quota,
		audit:             audit,
		adjustmentCeiling: adjustmentCeiling,
	}
}

// CurrentPeriod returns the open reporting window: from the latest reset (or
// workspace creation when none exists) until now.
func (s *QuotaService) CurrentPeriod(ctx context.Context, workspaceID uuid.UUID) (domain.Period, error) {
	reset, err := s.historyRepo.GetLatestReset(ctx, workspaceID)
	if err == nil {
		return domain.Period{Start: reset.ResetAt, End: time.Now()}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Period{}, err
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return domain.Period{}, err
	}
	return domain.Period{Start: workspace.CreatedAt, End: time.Now()}, nil
}

// EffectiveMinutes is the sum of raw tracked session durations within the
// period plus every signed adjustment created in it.
func (s *QuotaService) EffectiveMinutes(ctx context.Context, userID, workspaceID uuid.UUID, period domain.Period) (int, error) {
	sessions, err := s.activityRepo.ListByUserBetween(ctx, userID, workspaceID, period.Start, period.End)
	if err != nil {
		return 0, err
	}

	minutes := 0
	for _, session := range sessions {
		minutes += session.Minutes()
	}

	adjustments, err := s.adjustmentRepo.ListByUserBetween(ctx, userID, workspaceID, period.Start, period.End)
	if err != nil {
		return 0, err
	}
	for _, adjustment := range adjustments {
		minutes += adjustment.Minutes
	}

	return minutes, nil
}

type CreateAdjustmentInput struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	ActorID     uuid.UUID
	Minutes     int
	Reason      string
}

// CreateAdjustment writes an immutable signed correction. Zero minutes or a
// magnitude above the configured ceiling is rejected.
func (s *QuotaService) CreateAdjustment(ctx context.Context, input CreateAdjustmentInput) (*domain.ActivityAdjustment, error) {
	if input.Minutes == 0 || input.Minutes > s.adjustmentCeiling || input.Minutes < -s.adjustmentCeiling {
		return nil, domain.ErrInvalidAdjustment
	}

	adjustment := &domain.ActivityAdjustment{
		ID:          uuid.New(),
		UserID:      input.UserID,
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Minutes:     input.Minutes,
		Reason:      input.Reason,
		CreatedAt:   time.Now(),
	}
	if err := s.adjustmentRepo.Create(ctx, adjustment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, input.WorkspaceID, input.ActorID, "activity.adjust", input.UserID.String(), map[string]any{
		"minutes": input.Minutes,
		"reason":  input.Reason,
	})
	return adjustment, nil
}

// ClosePeriod snapshots the current period's per-member aggregates into
// immutable history rows and records the reset marker that starts the next
// period. Snapshot and marker commit together; prior history is never
// rewritten.
func (s *QuotaService) ClosePeriod(ctx context.Context, workspaceID, actorID uuid.UUID) ([]*domain.ActivityHistory, error) {
	period, err := s.CurrentPeriod(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	now := period.End
	var rows []*domain.ActivityHistory
	for _, member := range members {
		row, err := s.snapshotMember(ctx, member, workspaceID, period)
		if err != nil {
			return nil, err
		}
		if row != nil {
			rows = append(rows, row)
		}
	}

	reset := &domain.ActivityReset{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ResetAt:     now,
		ResetByID:   actorID,
	}
	if err := s.historyRepo.SnapshotPeriod(ctx, rows, reset); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, workspaceID, actorID, "activity.close_period", "", map[string]any{
		"periodStart": period.Start,
		"periodEnd":   now,
		"members":     len(rows),
	})
	return rows, nil
}

func (s *QuotaService) snapshotMember(ctx context.Context, member *domain.Member, workspaceID uuid.UUID, period domain.Period) (*domain.ActivityHistory, error) {
	sessions, err := s.activityRepo.ListByUserBetween(ctx, member.UserID, workspaceID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	minutes, messages := 0, 0
	for _, session := range sessions {
		minutes += session.Minutes()
		messages += session.Messages
	}

	adjustments, err := s.adjustmentRepo.ListByUserBetween(ctx, member.UserID, workspaceID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	for _, adjustment := range adjustments {
		minutes += adjustment.Minutes
	}

	hosted, err := s.sessionRepo.CountHostedBetween(ctx, member.ID, workspaceID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	attended, err := s.slotRepo.CountAttendedBetween(ctx, member.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	if minutes == 0 && messages == 0 && hosted == 0 && attended == 0 {
		return nil, nil
	}

	return &domain.ActivityHistory{
		ID:               uuid.New(),
		UserID:           member.UserID,
		WorkspaceID:      workspaceID,
		PeriodStart:      period.Start,
		PeriodEnd:        period.End,
		Minutes:          minutes,
		Messages:         messages,
		SessionsHosted:   int(hosted),
		SessionsAttended: int(attended),
	}, nil
}

// MemberQuotaReport computes the member's standing against every quota
// attached to their role for the current period.
func (s *QuotaService) MemberQuotaReport(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.QuotaStanding, error) {
	member, err := s.memberRepo.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	quotas, err := s.quotaRepo.ListByRole(ctx, member.RoleID)
	if err != nil {
		return nil, err
	}
	if len(quotas) == 0 {
		return nil, nil
	}

	period, err := s.CurrentPeriod(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	standings := make([]domain.QuotaStanding, 0, len(quotas))
	for _, quota := range quotas {
		current, err := s.currentValue(ctx, member, quota, period)
		if err != nil {
			return nil, err
		}
		standings = append(standings, domain.QuotaStanding{
			Quota:      quota,
			Current:    current,
			Percentage: quota.Percentage(current),
		})
	}
	return standings, nil
}

func (s *QuotaService) currentValue(ctx context.Context, member *domain.Member, quota *domain.Quota, period domain.Period) (int, error) {
	switch quota.Type {
	case domain.QuotaTypeMinutes:
		return s.EffectiveMinutes(ctx, member.UserID, member.WorkspaceID, period)
	case domain.QuotaTypeMessages:
		sessions, err := s.activityRepo.ListByUserBetween(ctx, member.UserID, member.WorkspaceID, period.Start, period.End)
		if err != nil {
			return 0, err
		}
		messages := 0
		for _, session := range sessions {
			messages += session.Messages
		}
		return messages, nil
	case domain.QuotaTypeSessionsHosted:
		hosted, err := s.sessionRepo.CountHostedBetween(ctx, member.ID, member.WorkspaceID, period.Start, period.End)
		return int(hosted), err
	case domain.QuotaTypeSessionsAttended:
		attended, err := s.slotRepo.CountAttendedBetween(ctx, member.ID, period.Start, period.End)
		return int(attended), err
	default:
		return 0, nil
	}
}

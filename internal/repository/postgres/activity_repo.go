package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, session *domain.ActivitySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *activityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivitySession, error) {
	var session domain.ActivitySession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *activityRepository) Update(ctx context.Context, session *domain.ActivitySession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *activityRepository) ListActive(ctx context.Context) ([]*domain.ActivitySession, error) {
	var sessions []*domain.ActivitySession
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *activityRepository) ListByUserBetween(ctx context.Context, userID, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error) {
	var sessions []*domain.ActivitySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND workspace_id = ? AND start_time >= ? AND start_time < ?",
			userID, workspaceID, start, end).
		Order("start_time").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *activityRepository) ListByWorkspaceBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error) {
	var sessions []*domain.ActivitySession
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND start_time >= ? AND start_time < ?", workspaceID, start, end).
		Order("start_time").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *activityRepository) ListOverlapping(ctx context.Context, workspaceID, excludeID uuid.UUID, start, end time.Time) ([]*domain.ActivitySession, error) {
	var sessions []*domain.ActivitySession
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id <> ?", workspaceID, excludeID).
		Where("start_time <= ?", end).
		Where("end_time IS NULL OR end_time >= ?", start).
		Order("start_time").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *activityRepository) IncrementMessages(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.ActivitySession{}).
		Where("id = ?", id).
		UpdateColumn("messages", gorm.Expr("messages + 1")).Error
}

type adjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) *adjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adjustment *domain.ActivityAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *adjustmentRepository) ListByUserBetween(ctx context.Context, userID, workspaceID uuid.UUID, start, end time.Time) ([]*domain.ActivityAdjustment, error) {
	var adjustments []*domain.ActivityAdjustment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND workspace_id = ? AND created_at >= ? AND created_at < ?",
			userID, workspaceID, start, end).
		Order("created_at").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.SessionInstance) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateSession
	}
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionInstance, error) {
	var session domain.SessionInstance
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetByScheduleAndDate(ctx context.Context, scheduleID uuid.UUID, date time.Time) (*domain.SessionInstance, error) {
	var session domain.SessionInstance
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND date = ?", scheduleID, date).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByWorkspaceBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*domain.SessionInstance, error) {
	var sessions []*domain.SessionInstance
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND date >= ? AND date < ?", workspaceID, start, end).
		Order("date").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) CountHostedBetween(ctx context.Context, ownerID, workspaceID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SessionInstance{}).
		Where("owner_id = ? AND workspace_id = ? AND ended IS NOT NULL AND date >= ? AND date < ?",
			ownerID, workspaceID, start, end).
		Count(&count).Error
	return count, err
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.SessionInstance) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.SlotAssignment{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.SessionInstance{}, "id = ?", id).Error
	})
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type sessionTypeRepository struct {
	db *gorm.DB
}

func NewSessionTypeRepository(db *gorm.DB) *sessionTypeRepository {
	return &sessionTypeRepository{db: db}
}

func (r *sessionTypeRepository) Create(ctx context.Context, sessionType *domain.SessionType) error {
	return r.db.WithContext(ctx).Create(sessionType).Error
}

func (r *sessionTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionType, error) {
	var sessionType domain.SessionType
	err := r.db.WithContext(ctx).
		Preload("Schedules").
		Preload("Slots").
		First(&sessionType, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sessionType, nil
}

func (r *sessionTypeRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.SessionType, error) {
	var types []*domain.SessionType
	err := r.db.WithContext(ctx).
		Preload("Schedules").
		Preload("Slots").
		Where("workspace_id = ?", workspaceID).
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.ScheduleDefinition) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduleDefinition, error) {
	var schedule domain.ScheduleDefinition
	err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.ScheduleDefinition) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ScheduleDefinition{}, "id = ?", id).Error
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *slotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, assignment *domain.SlotAssignment) error {
	err := r.db.WithContext(ctx).Create(assignment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlotOccupied
	}
	return err
}

func (r *slotRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SlotAssignment, error) {
	var assignments []*domain.SlotAssignment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.User").
		Where("session_id = ?", sessionID).
		Order("role_slot_id, slot_index").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *slotRepository) ExistsForMemberRole(ctx context.Context, sessionID, roleSlotID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SlotAssignment{}).
		Where("session_id = ? AND role_slot_id = ? AND member_id = ?", sessionID, roleSlotID, memberID).
		Count(&count).Error
	return count > 0, err
}

func (r *slotRepository) Delete(ctx context.Context, sessionID, roleSlotID uuid.UUID, slotIndex int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ? AND role_slot_id = ? AND slot_index = ?", sessionID, roleSlotID, slotIndex).
		Delete(&domain.SlotAssignment{})
	return result.RowsAffected, result.Error
}

func (r *slotRepository) CountAttendedBetween(ctx context.Context, memberID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SlotAssignment{}).
		Joins("JOIN session_instances ON session_instances.id = slot_assignments.session_id").
		Where("slot_assignments.member_id = ?", memberID).
		Where("session_instances.ended IS NOT NULL").
		Where("session_instances.date >= ? AND session_instances.date < ?", start, end).
		Count(&count).Error
	return count, err
}

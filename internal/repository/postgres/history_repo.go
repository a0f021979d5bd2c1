package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *historyRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) SnapshotPeriod(ctx context.Context, rows []*domain.ActivityHistory, reset *domain.ActivityReset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Create(rows).Error; err != nil {
				return err
			}
		}
		return tx.Create(reset).Error
	})
}

func (r *historyRepository) ListByUser(ctx context.Context, userID, workspaceID uuid.UUID) ([]*domain.ActivityHistory, error) {
	var rows []*domain.ActivityHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Order("period_start desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *historyRepository) GetLatestReset(ctx context.Context, workspaceID uuid.UUID) (*domain.ActivityReset, error) {
	var reset domain.ActivityReset
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("reset_at desc").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &reset, nil
}

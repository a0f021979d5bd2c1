package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"gorm.io/gorm"
)

type quotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *quotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) Create(ctx context.Context, quota *domain.Quota) error {
	return r.db.WithContext(ctx).Create(quota).Error
}

func (r *quotaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quota, error) {
	var quota domain.Quota
	err := r.db.WithContext(ctx).Preload("Roles").First(&quota, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuotaNotFound
		}
		return nil, err
	}
	return &quota, nil
}

func (r *quotaRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*domain.Quota, error) {
	var quotas []*domain.Quota
	err := r.db.WithContext(ctx).
		Joins("JOIN quota_roles ON quota_roles.quota_id = quotas.id").
		Where("quota_roles.role_id = ?", roleID).
		Find(&quotas).Error
	if err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *quotaRepository) LinkRole(ctx context.Context, quotaID, roleID uuid.UUID) error {
	link := &domain.QuotaRole{ID: uuid.New(), QuotaID: quotaID, RoleID: roleID}
	err := r.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *auditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

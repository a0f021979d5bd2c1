package postgres

import (
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema, including the unique indexes that
// back the occurrence and slot invariants.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Workspace{},
		&domain.Member{},
		&domain.Role{},
		&domain.SessionType{},
		&domain.RoleSlot{},
		&domain.ScheduleDefinition{},
		&domain.SessionInstance{},
		&domain.SlotAssignment{},
		&domain.ActivitySession{},
		&domain.ActivityAdjustment{},
		&domain.ActivityHistory{},
		&domain.ActivityReset{},
		&domain.Quota{},
		&domain.QuotaRole{},
		&domain.AuditLog{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:        NewUserRepository(db),
		UserSession: NewUserSessionRepository(db),
		Workspace:   NewWorkspaceRepository(db),
		Member:      NewMemberRepository(db),
		Role:        NewRoleRepository(db),
		SessionType: NewSessionTypeRepository(db),
		Schedule:    NewScheduleRepository(db),
		Session:     NewSessionRepository(db),
		Slot:        NewSlotRepository(db),
		Activity:    NewActivityRepository(db),
		Adjustment:  NewAdjustmentRepository(db),
		History:     NewHistoryRepository(db),
		Quota:       NewQuotaRepository(db),
		Audit:       NewAuditRepository(db),
	}
}

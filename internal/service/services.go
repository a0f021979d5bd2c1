package service

import (
	"github.com/mira/workspace-hub/internal/config"
	"github.com/mira/workspace-hub/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth       *AuthService
	Permission *PermissionService
	Workspace  *WorkspaceService
	Schedule   *ScheduleService
	Slot       *SlotService
	Activity   *ActivityService
	Quota      *QuotaService
	Audit      *AuditRecorder
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger *zap.Logger, publisher EventPublisher) *Services {
	audit := NewAuditRecorder(repos.Audit, logger)
	permission := NewPermissionService(repos.Member, cfg.RoleCacheSize, cfg.RoleCacheTTL)
	return &Services{
		Auth:       NewAuthService(repos.User, repos.UserSession, cfg),
		Permission: permission,
		Workspace:  NewWorkspaceService(repos.Workspace, repos.Member, repos.Role, repos.Quota, permission, audit),
		Schedule:   NewScheduleService(repos.Schedule, repos.Session, repos.SessionType, repos.Member, audit),
		Slot:       NewSlotService(repos.Slot, repos.Session, repos.SessionType, repos.Member),
		Activity:   NewActivityService(repos.Activity, publisher, logger),
		Quota:      NewQuotaService(repos, audit, cfg.AdjustmentCeilingMinutes),
		Audit:      audit,
	}
}

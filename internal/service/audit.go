package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AuditRecorder writes staff actions to the audit sink. Recording is
// fire-and-forget: a failed write is logged and swallowed so it can never
// fail or roll back the action that triggered it.
type AuditRecorder struct {
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewAuditRecorder(auditRepo repository.AuditRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{auditRepo: auditRepo, logger: logger}
}

func (r *AuditRecorder) Record(ctx context.Context, workspaceID, actorID uuid.UUID, action, subject string, details map[string]any) {
	var payload datatypes.JSON
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = datatypes.JSON(raw)
		}
	}

	entry := &domain.AuditLog{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Action:      action,
		Subject:     subject,
		Details:     payload,
		CreatedAt:   time.Now(),
	}

	if err := r.auditRepo.Create(ctx, entry); err != nil {
		r.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}
}

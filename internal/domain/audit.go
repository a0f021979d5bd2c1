package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is a write-only record of a staff action. Rows are never read back
// by the engine itself.
type AuditLog struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID      `json:"workspaceId" gorm:"type:uuid;not null;index"`
	ActorID     uuid.UUID      `json:"actorId" gorm:"type:uuid;not null"`
	Action      string         `json:"action" gorm:"not null"`
	Subject     string         `json:"subject"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `json:"createdAt"`
}

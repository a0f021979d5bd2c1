package domain

import (
	"math"

	"github.com/google/uuid"
)

type QuotaType string

const (
	QuotaTypeMinutes          QuotaType = "minutes"
	QuotaTypeSessionsHosted   QuotaType = "sessions_hosted"
	QuotaTypeSessionsAttended QuotaType = "sessions_attended"
	QuotaTypeMessages         QuotaType = "messages"
)

// Quota is a per-period target applied to members through their roles.
type Quota struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Type        QuotaType `json:"type" gorm:"not null"`
	Value       int       `json:"value" gorm:"not null"`

	Roles []QuotaRole `json:"roles,omitempty" gorm:"foreignKey:QuotaID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table to "quotas"; gorm's pluralizer treats "quota" as
// already plural and would otherwise name it "quota".
func (Quota) TableName() string { return "quotas" }

// QuotaRole links a quota to a role it applies to.
type QuotaRole struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	QuotaID uuid.UUID `json:"quotaId" gorm:"type:uuid;not null;uniqueIndex:idx_quota_role"`
	RoleID  uuid.UUID `json:"roleId" gorm:"type:uuid;not null;uniqueIndex:idx_quota_role"`
}

// Percentage computes completion against the quota target, clamped to 100.
// A target of zero or below is always satisfied.
func (q *Quota) Percentage(current int) int {
	if q.Value <= 0 {
		return 100
	}
	pct := int(math.Round(100 * float64(current) / float64(q.Value)))
	if pct > 100 {
		return 100
	}
	return pct
}

// QuotaStanding is a derived view of one member's progress against a quota.
type QuotaStanding struct {
	Quota      *Quota `json:"quota"`
	Current    int    `json:"current"`
	Percentage int    `json:"percentage"`
}

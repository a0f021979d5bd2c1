package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Capability is a named action a role may perform. Roles persist permissions
// as free-form strings; they are translated into this closed set at load so
// gate logic can switch exhaustively.
type Capability string

const (
	CapManageSessions Capability = "manage_sessions"
	CapHostSessions   Capability = "host_sessions"
	CapManageActivity Capability = "manage_activity"
	CapManageQuotas   Capability = "manage_quotas"
	CapManageMembers  Capability = "manage_members"
	CapViewReports    Capability = "view_reports"
	CapAdmin          Capability = "admin"
)

// AllCapabilities contains every recognized capability.
var AllCapabilities = []Capability{
	CapManageSessions,
	CapHostSessions,
	CapManageActivity,
	CapManageQuotas,
	CapManageMembers,
	CapViewReports,
	CapAdmin,
}

// ParseCapability maps a stored permission string onto the closed set.
func ParseCapability(s string) (Capability, bool) {
	switch c := Capability(s); c {
	case CapManageSessions, CapHostSessions, CapManageActivity,
		CapManageQuotas, CapManageMembers, CapViewReports, CapAdmin:
		return c, true
	}
	return "", false
}

func (c Capability) String() string {
	return string(c)
}

// Role is a workspace staff rank with a permission set. An owner role holds
// every capability regardless of the stored permissions.
type Role struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID      `json:"workspaceId" gorm:"type:uuid;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Permissions datatypes.JSON `json:"permissions"`
	IsOwnerRole bool           `json:"isOwnerRole" gorm:"not null;default:false"`
}

// Capabilities decodes the stored permission strings, dropping any that are
// not part of the recognized set.
func (r *Role) Capabilities() []Capability {
	if len(r.Permissions) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(r.Permissions, &raw); err != nil {
		return nil
	}
	caps := make([]Capability, 0, len(raw))
	for _, s := range raw {
		if c, ok := ParseCapability(s); ok {
			caps = append(caps, c)
		}
	}
	return caps
}

// HasCapability reports whether the role grants the capability, honoring the
// owner bypass.
func (r *Role) HasCapability(c Capability) bool {
	if r.IsOwnerRole {
		return true
	}
	for _, held := range r.Capabilities() {
		if held == c {
			return true
		}
	}
	return false
}

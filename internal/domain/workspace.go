package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is one community group on the external platform. All scheduling,
// activity and quota state hangs off a workspace.
type Workspace struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name       string    `json:"name" gorm:"not null"`
	GroupID    int64     `json:"groupId" gorm:"uniqueIndex;not null"`
	OwnerID    uuid.UUID `json:"ownerId" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Member links a user to a workspace with a single role.
type Member struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_member_workspace"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;uniqueIndex:idx_member_workspace"`
	RoleID      uuid.UUID `json:"roleId" gorm:"type:uuid;not null"`
	JoinedAt    time.Time `json:"joinedAt"`

	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// WorkspaceBuilder creates a workspace together with its owner role and the
// owner's membership.
type WorkspaceBuilder struct {
	name    string
	groupID int64
	owner   *domain.User
}

func NewWorkspaceBuilder() *WorkspaceBuilder {
	return &WorkspaceBuilder{
		name:    fmt.Sprintf("workspace_%s", uuid.New().String()[:8]),
		groupID: time.Now().UnixNano(),
	}
}

func (b *WorkspaceBuilder) WithName(name string) *WorkspaceBuilder {
	b.name = name
	return b
}

func (b *WorkspaceBuilder) WithOwner(owner *domain.User) *WorkspaceBuilder {
	b.owner = owner
	return b
}

// Build returns the workspace, its owner role and the owner member.
func (b *WorkspaceBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Workspace, *domain.Role, *domain.Member) {
	t.Helper()

	owner := b.owner
	if owner == nil {
		owner, _ = NewUserBuilder().Build(t, db)
	}

	workspace := &domain.Workspace{
		ID:        uuid.New(),
		Name:      b.name,
		GroupID:   b.groupID,
		OwnerID:   owner.ID,
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(workspace).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	ownerRole := &domain.Role{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		Name:        "Owner",
		Permissions: datatypes.JSON(`[]`),
		IsOwnerRole: true,
	}
	if err := db.Create(ownerRole).Error; err != nil {
		t.Fatalf("failed to create owner role: %v", err)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		UserID:      owner.ID,
		WorkspaceID: workspace.ID,
		RoleID:      ownerRole.ID,
		JoinedAt:    time.Now(),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create owner member: %v", err)
	}
	member.Role = ownerRole
	member.User = owner

	return workspace, ownerRole, member
}

// RoleBuilder creates workspace roles with specific permissions.
type RoleBuilder struct {
	workspaceID uuid.UUID
	name        string
	permissions []domain.Capability
	isOwner     bool
}

func NewRoleBuilder(workspaceID uuid.UUID) *RoleBuilder {
	return &RoleBuilder{
		workspaceID: workspaceID,
		name:        fmt.Sprintf("role_%s", uuid.New().String()[:8]),
	}
}

func (b *RoleBuilder) WithName(name string) *RoleBuilder {
	b.name = name
	return b
}

func (b *RoleBuilder) WithPermissions(caps ...domain.Capability) *RoleBuilder {
	b.permissions = caps
	return b
}

func (b *RoleBuilder) AsOwner() *RoleBuilder {
	b.isOwner = true
	return b
}

func (b *RoleBuilder) Build(t *testing.T, db *gorm.DB) *domain.Role {
	t.Helper()

	perms := `[`
	for i, c := range b.permissions {
		if i > 0 {
			perms += ","
		}
		perms += fmt.Sprintf("%q", c.String())
	}
	perms += `]`

	role := &domain.Role{
		ID:          uuid.New(),
		WorkspaceID: b.workspaceID,
		Name:        b.name,
		Permissions: datatypes.JSON(perms),
		IsOwnerRole: b.isOwner,
	}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	return role
}

// MemberBuilder attaches a user to a workspace under a role.
type MemberBuilder struct {
	workspaceID uuid.UUID
	roleID      uuid.UUID
	user        *domain.User
}

func NewMemberBuilder(workspaceID, roleID uuid.UUID) *MemberBuilder {
	return &MemberBuilder{workspaceID: workspaceID, roleID: roleID}
}

func (b *MemberBuilder) WithUser(user *domain.User) *MemberBuilder {
	b.user = user
	return b
}

func (b *MemberBuilder) Build(t *testing.T, db *gorm.DB) *domain.Member {
	t.Helper()

	user := b.user
	if user == nil {
		user, _ = NewUserBuilder().Build(t, db)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		UserID:      user.ID,
		WorkspaceID: b.workspaceID,
		RoleID:      b.roleID,
		JoinedAt:    time.Now(),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	member.User = user
	return member
}

// SessionTypeBuilder creates a session type with a schedule and role slots.
type SessionTypeBuilder struct {
	workspaceID uuid.UUID
	name        string
	days        []int
	hour        int
	minute      int
	slots       map[string]int
}

func NewSessionTypeBuilder(workspaceID uuid.UUID) *SessionTypeBuilder {
	return &SessionTypeBuilder{
		workspaceID: workspaceID,
		name:        fmt.Sprintf("session_%s", uuid.New().String()[:8]),
		days:        []int{int(time.Wednesday)},
		hour:        18,
		minute:      0,
		slots:       map[string]int{"Host": 1, "Co-Host": 2},
	}
}

func (b *SessionTypeBuilder) WithSchedule(days []int, hour, minute int) *SessionTypeBuilder {
	b.days = days
	b.hour = hour
	b.minute = minute
	return b
}

func (b *SessionTypeBuilder) WithSlot(name string, capacity int) *SessionTypeBuilder {
	b.slots[name] = capacity
	return b
}

// Build returns the session type with its schedule and slots preloaded.
func (b *SessionTypeBuilder) Build(t *testing.T, db *gorm.DB) *domain.SessionType {
	t.Helper()

	sessionType := &domain.SessionType{
		ID:          uuid.New(),
		WorkspaceID: b.workspaceID,
		Name:        b.name,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(sessionType).Error; err != nil {
		t.Fatalf("failed to create session type: %v", err)
	}

	schedule := &domain.ScheduleDefinition{
		ID:            uuid.New(),
		SessionTypeID: sessionType.ID,
		DaysOfWeek:    b.days,
		Hour:          b.hour,
		Minute:        b.minute,
	}
	if err := db.Create(schedule).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}
	sessionType.Schedules = []domain.ScheduleDefinition{*schedule}

	for name, capacity := range b.slots {
		slot := &domain.RoleSlot{
			ID:            uuid.New(),
			SessionTypeID: sessionType.ID,
			Name:          name,
			Capacity:      capacity,
		}
		if err := db.Create(slot).Error; err != nil {
			t.Fatalf("failed to create role slot: %v", err)
		}
		sessionType.Slots = append(sessionType.Slots, *slot)
	}

	return sessionType
}

// ActivityBuilder creates tracked activity sessions.
type ActivityBuilder struct {
	userID      uuid.UUID
	workspaceID uuid.UUID
	start       time.Time
	end         *time.Time
	active      bool
	messages    int
}

func NewActivityBuilder(userID, workspaceID uuid.UUID) *ActivityBuilder {
	return &ActivityBuilder{
		userID:      userID,
		workspaceID: workspaceID,
		start:       time.Now().Add(-time.Hour),
	}
}

func (b *ActivityBuilder) WithSpan(start, end time.Time) *ActivityBuilder {
	b.start = start
	b.end = &end
	return b
}

func (b *ActivityBuilder) Live(start time.Time) *ActivityBuilder {
	b.start = start
	b.end = nil
	b.active = true
	return b
}

func (b *ActivityBuilder) WithMessages(n int) *ActivityBuilder {
	b.messages = n
	return b
}

func (b *ActivityBuilder) Build(t *testing.T, db *gorm.DB) *domain.ActivitySession {
	t.Helper()

	session := &domain.ActivitySession{
		ID:          uuid.New(),
		UserID:      b.userID,
		WorkspaceID: b.workspaceID,
		StartTime:   b.start,
		EndTime:     b.end,
		Active:      b.active,
		Messages:    b.messages,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create activity session: %v", err)
	}
	return session
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivitySession is one tracked span of real-time presence in the workspace.
// active=true with a nil EndTime means the user is live right now. At most
// one live row should exist per (user, workspace); the reconciliation sweep
// repairs rows left live by an unclean shutdown.
type ActivitySession struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	WorkspaceID uuid.UUID  `json:"workspaceId" gorm:"type:uuid;not null;index"`
	StartTime   time.Time  `json:"startTime" gorm:"not null"`
	EndTime     *time.Time `json:"endTime"`
	Active      bool       `json:"active" gorm:"not null;default:false;index"`
	Messages    int        `json:"messages" gorm:"not null;default:0"`
}

// Minutes returns the tracked duration, zero while the session is live.
func (a *ActivitySession) Minutes() int {
	if a.EndTime == nil {
		return 0
	}
	return int(a.EndTime.Sub(a.StartTime).Minutes())
}

// Overlaps applies the closed-interval overlap test against a probe window.
// A live session has no upper bound and always satisfies it.
func (a *ActivitySession) Overlaps(start, end time.Time) bool {
	if a.StartTime.After(end) {
		return false
	}
	return a.EndTime == nil || !a.EndTime.Before(start)
}

// ActivityAdjustment is a signed manual correction to a user's tracked
// minutes. Immutable once written; effective totals sum the raw sessions and
// every in-period adjustment.
type ActivityAdjustment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null"`
	ActorID     uuid.UUID `json:"actorId" gorm:"type:uuid;not null"`
	Minutes     int       `json:"minutes" gorm:"not null"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ActivityHistory is the immutable per-user snapshot written when a period
// closes.
type ActivityHistory struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_history_period"`
	WorkspaceID      uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;uniqueIndex:idx_history_period"`
	PeriodStart      time.Time `json:"periodStart" gorm:"not null;uniqueIndex:idx_history_period"`
	PeriodEnd        time.Time `json:"periodEnd" gorm:"not null"`
	Minutes          int       `json:"minutes" gorm:"not null"`
	Messages         int       `json:"messages" gorm:"not null"`
	SessionsHosted   int       `json:"sessionsHosted" gorm:"not null"`
	SessionsAttended int       `json:"sessionsAttended" gorm:"not null"`
}

// ActivityReset marks a period boundary. The most recent reset defines the
// current period's start.
type ActivityReset struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;index"`
	ResetAt     time.Time `json:"resetAt" gorm:"not null"`
	ResetByID   uuid.UUID `json:"resetById" gorm:"type:uuid;not null"`
}

// Period is a half-open reporting window [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

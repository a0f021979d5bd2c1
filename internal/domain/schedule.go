package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionType describes a kind of recurring session a workspace runs
// (training, shift, event). Role slots define who can claim into it.
type SessionType struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null"`
	Name        string    `json:"name" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`

	Schedules []ScheduleDefinition `json:"schedules,omitempty" gorm:"foreignKey:SessionTypeID"`
	Slots     []RoleSlot           `json:"slots,omitempty" gorm:"foreignKey:SessionTypeID"`
}

// RoleSlot is a claimable position within a session type, e.g. "Host" with
// capacity 1 or "Trainer" with capacity 4.
type RoleSlot struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SessionTypeID uuid.UUID `json:"sessionTypeId" gorm:"type:uuid;not null"`
	Name          string    `json:"name" gorm:"not null"`
	Capacity      int       `json:"capacity" gorm:"not null;default:1"`
}

// ScheduleDefinition is a recurring weekly schedule: a set of weekdays plus a
// fixed UTC wall-clock time. Days are stored as a JSON array of ints 0..6
// (Sunday = 0).
type ScheduleDefinition struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	SessionTypeID uuid.UUID      `json:"sessionTypeId" gorm:"type:uuid;not null"`
	DaysOfWeek    datatypes.JSONSlice[int] `json:"daysOfWeek"`
	Hour          int            `json:"hour" gorm:"not null"`
	Minute        int            `json:"minute" gorm:"not null"`
}

// Validate checks the stored time and day values.
func (s *ScheduleDefinition) Validate() error {
	if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
		return ErrInvalidSchedule
	}
	if len(s.DaysOfWeek) == 0 {
		return ErrInvalidSchedule
	}
	for _, d := range s.DaysOfWeek {
		if d < 0 || d > 6 {
			return ErrInvalidSchedule
		}
	}
	return nil
}

// RunsOn reports whether the schedule has an occurrence on the given weekday.
func (s *ScheduleDefinition) RunsOn(day time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// OccurrenceOn resolves the schedule's occurrence for the calendar date that
// probeMillis falls on in the caller's locale. offsetMinutes is the caller's
// UTC offset in minutes, east positive; it selects only which date the
// occurrence belongs to. The returned instant always carries the schedule's
// stored UTC hour and minute, so a 18:00 schedule is 18:00 UTC for every
// member regardless of locale. Returns ErrNoOccurrence when the resolved
// date's weekday is not part of the schedule.
func (s *ScheduleDefinition) OccurrenceOn(probeMillis int64, offsetMinutes int) (time.Time, error) {
	local := time.UnixMilli(probeMillis).UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	if !s.RunsOn(local.Weekday()) {
		return time.Time{}, ErrNoOccurrence
	}
	y, m, d := local.Date()
	return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, time.UTC), nil
}

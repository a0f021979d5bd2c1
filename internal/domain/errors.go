package domain

import "errors"

// Permission errors
var (
	ErrForbidden = errors.New("actor lacks the required capability")
)

// Lookup errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrQuotaNotFound        = errors.New("quota not found")
	ErrMemberNotInWorkspace = errors.New("member does not belong to the workspace")
)

// Conflict errors
var (
	ErrSlotOccupied     = errors.New("slot is already occupied")
	ErrDuplicateSession = errors.New("session already exists for this occurrence")
)

// Validation errors
var (
	ErrInvalidSchedule   = errors.New("schedule hour, minute or days are out of range")
	ErrInvalidAdjustment = errors.New("adjustment minutes are zero or exceed the ceiling")
	ErrInvalidSlotIndex  = errors.New("slot index is outside the role slot capacity")
	ErrInvalidCapability = errors.New("unknown capability")
	ErrNoOccurrence      = errors.New("schedule has no occurrence on this date")
)

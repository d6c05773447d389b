package game

import "errors"

var (
	ErrRoleNotFound        = errors.New("role not found in registry")
	ErrNoParticipants      = errors.New("participant list is empty")
	ErrPlayerCountMismatch = errors.New("participant list does not match player count")
	ErrOverAllocated       = errors.New("configured roles exceed player count")
	ErrNegativeCount       = errors.New("role count cannot be negative")
	ErrCatchAllCount       = errors.New("catch-all role count is derived and cannot be requested")
	ErrIntegrityViolation  = errors.New("assignment failed integrity verification")
	ErrNoAssignment        = errors.New("session has no assignment")
	ErrNotRevealing        = errors.New("session is not in the reveal phase")
	ErrRevealComplete      = errors.New("all roles have been revealed")
)

package domain

import "errors"

var (
	ErrTripNotFound      = errors.New("trip not found")
	ErrTripUnavailable   = errors.New("trip is not available")
	ErrDateRequired      = errors.New("trip date is required")
	ErrInvalidDate       = errors.New("trip date must be YYYY-MM-DD")
	ErrInvalidGroupSize  = errors.New("invalid group size")
	ErrRouteRequired     = errors.New("route selection is required")
	ErrUnknownRoute      = errors.New("unknown route")
	ErrNameRequired      = errors.New("guest name is required")
	ErrPhoneRequired     = errors.New("guest phone is required")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidStep       = errors.New("action not allowed at this step")
	ErrLockRequired      = errors.New("seat lock is missing")
	ErrLockExpired       = errors.New("seat lock expired")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrSessionClosed     = errors.New("booking session closed")
	ErrBusy              = errors.New("another operation is in progress")
	ErrSessionNotFound   = errors.New("booking session not found")

	ErrLeadNotFound     = errors.New("lead not found")
	ErrInvalidStage     = errors.New("invalid stage")
	ErrReasonRequired   = errors.New("lost reason is required")
	ErrInvalidPreset    = errors.New("invalid reminder preset")
	ErrVersionConflict  = errors.New("lead was modified by another operator")
	ErrStoreUnavailable = errors.New("lead store unavailable")
	ErrNoOwners         = errors.New("no lead owners configured")
)

package reservation

import "errors"

var (
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotReady = errors.New("session not ready")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrHoldExpired     = errors.New("seat hold expired")
	ErrEmptySelection  = errors.New("no seats selected")
	ErrSelectionGap    = errors.New("selection leaves a single seat stranded")
	ErrConfirmInFlight = errors.New("confirm already in progress")
	ErrNoDraft         = errors.New("no draft booking")
	ErrDraftNotPending = errors.New("draft booking is not pending")
	ErrDraftExists     = errors.New("draft booking already created")

	// ErrUnknownLockAction is returned by Apply for action tags it does not handle.
	ErrUnknownLockAction = errors.New("unknown lock action")
)

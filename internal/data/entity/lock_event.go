package entity

import "strings"

type LockAction int

const (
	LockActionUnknown LockAction = iota
	LockActionLock
	LockActionUnlock
	LockActionBooked
	LockActionExtend
)

func (a LockAction) String() string {
	switch a {
	case LockActionLock:
		return "lock"
	case LockActionUnlock:
		return "unlock"
	case LockActionBooked:
		return "booked"
	case LockActionExtend:
		return "extend"
	default:
		return "unknown"
	}
}

// ParseLockAction maps the wire tag to a LockAction. Unrecognised tags map to LockActionUnknown.
func ParseLockAction(tag string) LockAction {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "lock":
		return LockActionLock
	case "unlock":
		return LockActionUnlock
	case "booked":
		return LockActionBooked
	case "extend":
		return LockActionExtend
	default:
		return LockActionUnknown
	}
}

// SeatsLockUpdated is the payload pushed on the showtime group.
type SeatsLockUpdated struct {
	ShowtimeID      string   `json:"showtimeId,omitempty"`
	Action          string   `json:"action"`
	LockedSeatIDs   []string `json:"lockedSeatIds,omitempty"`
	UnlockedSeatIDs []string `json:"unlockedSeatIds,omitempty"`
	BookedSeatIDs   []string `json:"bookedSeatIds,omitempty"`
}

// LockEvent is a decoded SeatsLockUpdated with its action resolved.
type LockEvent struct {
	Action          LockAction
	RawAction       string
	LockedSeatIDs   []string
	UnlockedSeatIDs []string
	BookedSeatIDs   []string
}

func (m SeatsLockUpdated) Event() LockEvent {
	return LockEvent{
		Action:          ParseLockAction(m.Action),
		RawAction:       m.Action,
		LockedSeatIDs:   m.LockedSeatIDs,
		UnlockedSeatIDs: m.UnlockedSeatIDs,
		BookedSeatIDs:   m.BookedSeatIDs,
	}
}

package reservation

import (
	"fmt"
	"sort"

	"cinema-reservation/internal/data/entity"
)

// AvailabilityView holds the seats other shoppers have locked or booked for one
// showtime. The zero value is an empty view. Views are immutable; Apply returns a
// new one.
//
// The locked set is kept raw: a booked event does not remove the seat from it.
// IsLocked and Locked join the two sets so booked always wins.
type AvailabilityView struct {
	locked map[string]struct{}
	booked map[string]struct{}
}

// Apply folds one lock event into view. Unknown actions return view unchanged
// together with ErrUnknownLockAction.
func Apply(view AvailabilityView, ev entity.LockEvent) (AvailabilityView, error) {
	switch ev.Action {
	case entity.LockActionLock, entity.LockActionExtend:
		next := view.clone()
		for _, id := range ev.LockedSeatIDs {
			if _, booked := next.booked[id]; booked {
				continue
			}
			next.locked[id] = struct{}{}
		}
		return next, nil
	case entity.LockActionUnlock:
		next := view.clone()
		for _, id := range ev.UnlockedSeatIDs {
			delete(next.locked, id)
		}
		return next, nil
	case entity.LockActionBooked:
		next := view.clone()
		for _, id := range ev.BookedSeatIDs {
			next.booked[id] = struct{}{}
		}
		return next, nil
	default:
		return view, fmt.Errorf("%w: %q", ErrUnknownLockAction, ev.RawAction)
	}
}

// WithLocked unions a lock snapshot into view.
func WithLocked(view AvailabilityView, ids []string) AvailabilityView {
	next, _ := Apply(view, entity.LockEvent{Action: entity.LockActionLock, LockedSeatIDs: ids})
	return next
}

func (v AvailabilityView) IsLocked(id string) bool {
	if v.IsBooked(id) {
		return false
	}
	_, ok := v.locked[id]
	return ok
}

func (v AvailabilityView) IsBooked(id string) bool {
	_, ok := v.booked[id]
	return ok
}

// Locked returns the seats locked by others and not booked, sorted.
func (v AvailabilityView) Locked() []string {
	out := make([]string, 0, len(v.locked))
	for id := range v.locked {
		if !v.IsBooked(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (v AvailabilityView) Booked() []string {
	out := make([]string, 0, len(v.booked))
	for id := range v.booked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (v AvailabilityView) clone() AvailabilityView {
	next := AvailabilityView{
		locked: make(map[string]struct{}, len(v.locked)),
		booked: make(map[string]struct{}, len(v.booked)),
	}
	for id := range v.locked {
		next.locked[id] = struct{}{}
	}
	for id := range v.booked {
		next.booked[id] = struct{}{}
	}
	return next
}

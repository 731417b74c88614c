package reservation

import (
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockEv(action entity.LockAction, ids ...string) entity.LockEvent {
	ev := entity.LockEvent{Action: action, RawAction: action.String()}
	switch action {
	case entity.LockActionLock, entity.LockActionExtend:
		ev.LockedSeatIDs = ids
	case entity.LockActionUnlock:
		ev.UnlockedSeatIDs = ids
	case entity.LockActionBooked:
		ev.BookedSeatIDs = ids
	}
	return ev
}

func fold(t *testing.T, events ...entity.LockEvent) AvailabilityView {
	t.Helper()
	var v AvailabilityView
	for _, ev := range events {
		next, err := Apply(v, ev)
		require.NoError(t, err)
		v = next
	}
	return v
}

func TestApply_LockIsIdempotent(t *testing.T) {
	once := fold(t, lockEv(entity.LockActionLock, "A1", "A2"))
	twice := fold(t, lockEv(entity.LockActionLock, "A1", "A2"), lockEv(entity.LockActionLock, "A1"))

	assert.Equal(t, once.Locked(), twice.Locked())
	assert.Equal(t, []string{"A1", "A2"}, twice.Locked())
}

func TestApply_ExtendActsLikeLock(t *testing.T) {
	v := fold(t, lockEv(entity.LockActionLock, "A1"), lockEv(entity.LockActionExtend, "A1", "A3"))
	assert.Equal(t, []string{"A1", "A3"}, v.Locked())
}

func TestApply_UnlockRemovesAndIgnoresNonMembers(t *testing.T) {
	v := fold(t,
		lockEv(entity.LockActionLock, "A1", "A2"),
		lockEv(entity.LockActionUnlock, "A2", "Z9"),
	)
	assert.Equal(t, []string{"A1"}, v.Locked())
	assert.False(t, v.IsLocked("A2"))
}

func TestApply_BookedIsTerminal(t *testing.T) {
	v := fold(t,
		lockEv(entity.LockActionLock, "B4"),
		lockEv(entity.LockActionBooked, "B4"),
		lockEv(entity.LockActionUnlock, "B4"),
		lockEv(entity.LockActionLock, "B4"),
		lockEv(entity.LockActionExtend, "B4"),
		lockEv(entity.LockActionUnlock, "B4"),
	)

	assert.True(t, v.IsBooked("B4"))
	assert.False(t, v.IsLocked("B4"))
	assert.Equal(t, []string{"B4"}, v.Booked())
	assert.Empty(t, v.Locked())
}

func TestApply_LockedAndBookedViewsAreDisjoint(t *testing.T) {
	// booked arrives without a matching unlock
	v := fold(t, lockEv(entity.LockActionLock, "C1", "C2"), lockEv(entity.LockActionBooked, "C1"))

	assert.Equal(t, []string{"C2"}, v.Locked())
	assert.Equal(t, []string{"C1"}, v.Booked())
}

func TestApply_UnknownActionLeavesViewUnchanged(t *testing.T) {
	v := fold(t, lockEv(entity.LockActionLock, "A1"))

	next, err := Apply(v, entity.LockEvent{Action: entity.LockActionUnknown, RawAction: "teleport", LockedSeatIDs: []string{"A2"}})
	assert.ErrorIs(t, err, ErrUnknownLockAction)
	assert.Equal(t, []string{"A1"}, next.Locked())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	before := fold(t, lockEv(entity.LockActionLock, "A1"))
	_, err := Apply(before, lockEv(entity.LockActionLock, "A2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A1"}, before.Locked())
}

func TestWithLocked_SnapshotUnionsWithEarlierEvents(t *testing.T) {
	// live events can land before the snapshot resolves
	live := fold(t, lockEv(entity.LockActionLock, "A3"), lockEv(entity.LockActionBooked, "A4"))
	v := WithLocked(live, []string{"A1", "A4"})

	assert.Equal(t, []string{"A1", "A3"}, v.Locked())
	assert.True(t, v.IsBooked("A4"))
}

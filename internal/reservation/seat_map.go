package reservation

import (
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/utils"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatLocked    SeatStatus = "locked"
	SeatBooked    SeatStatus = "booked"
	SeatInactive  SeatStatus = "inactive"
)

type SeatView struct {
	ID         string
	Label      string
	SeatNumber int
	PositionX  float64
	SeatType   entity.SeatType
	Color      string
	Status     SeatStatus
	PartnerID  string
}

type RowView struct {
	RowLabel string
	Seats    []SeatView
}

// Snapshot is a consistent read of the session for rendering.
type Snapshot struct {
	ID          string
	ShowtimeID  string
	State       SessionState
	Err         error
	Rows        []RowView
	Selection   []string
	SecondsLeft int
	Countdown   string
	Expired     bool
	DraftState  DraftState
	Draft       *entity.BookingDraft
}

// seatStatus resolves a seat's rendered status. Priority is
// inactive > booked > selected > locked > available.
func seatStatus(seat *entity.Seat, sel Selection, view AvailabilityView) SeatStatus {
	switch {
	case !seat.IsActive:
		return SeatInactive
	case view.IsBooked(seat.ID):
		return SeatBooked
	case sel.Contains(seat.ID):
		return SeatSelected
	case view.IsLocked(seat.ID):
		return SeatLocked
	default:
		return SeatAvailable
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	secondsLeft := s.timer.Remaining()
	snap := Snapshot{
		ID:          s.id,
		ShowtimeID:  s.showtime.ID,
		State:       s.state,
		Err:         s.err,
		Selection:   s.selection.IDs(),
		SecondsLeft: secondsLeft,
		Countdown:   utils.FormatCountdown(secondsLeft),
		Expired:     s.timer.Expired(),
		DraftState:  s.draft.State(),
	}
	if d, ok := s.draft.Draft(); ok {
		snap.Draft = &d
	}

	if s.layout == nil {
		return snap
	}

	snap.Rows = make([]RowView, 0, len(s.layout.Rows))
	for _, row := range s.layout.Rows {
		rv := RowView{RowLabel: row.RowLabel, Seats: make([]SeatView, 0, len(row.Seats))}
		for _, seat := range row.Seats {
			if seat == nil {
				continue
			}
			sv := SeatView{
				ID:         seat.ID,
				Label:      seat.Label(),
				SeatNumber: seat.SeatNumber,
				PositionX:  seat.PositionX,
				SeatType:   seat.SeatType,
				Color:      s.layout.Color(seat.SeatType),
				Status:     seatStatus(seat, s.selection, s.view),
			}
			if p, ok := s.rules.Partner(seat.ID); ok {
				sv.PartnerID = p.ID
			}
			rv.Seats = append(rv.Seats, sv)
		}
		snap.Rows = append(snap.Rows, rv)
	}
	return snap
}

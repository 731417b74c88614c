package reservation

import (
	"math"
	"sort"

	"cinema-reservation/internal/data/entity"
)

// Reason explains why a toggle was rejected. Rejections are silent: the
// selection stays as it was and no error is raised.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInactive           Reason = "inactive"
	ReasonBooked             Reason = "booked"
	ReasonLocked             Reason = "locked"
	ReasonGap                Reason = "gap"
	ReasonPartnerUnavailable Reason = "partner_unavailable"
	ReasonLimitReached       Reason = "limit_reached"
	ReasonExpired            Reason = "expired"
	ReasonConfirming         Reason = "confirming"
)

const positionEpsilon = 1e-9

type RuleConfig struct {
	// CoupleSeatWidth is the largest positionX distance between two halves of a couple seat.
	CoupleSeatWidth float64
	// MaxSeats caps the selection size. Zero means no cap.
	MaxSeats int
}

// SelectionRules evaluates toggle intents against one seat layout.
type SelectionRules struct {
	cfg      RuleConfig
	seats    map[string]*entity.Seat
	rows     map[string][]*entity.Seat // sorted by seat number
	partners map[string]*entity.Seat
}

func NewSelectionRules(layout *entity.SeatLayout, cfg RuleConfig) *SelectionRules {
	if cfg.CoupleSeatWidth <= 0 {
		cfg.CoupleSeatWidth = 1
	}

	r := &SelectionRules{
		cfg:      cfg,
		seats:    make(map[string]*entity.Seat),
		rows:     make(map[string][]*entity.Seat),
		partners: make(map[string]*entity.Seat),
	}

	for _, row := range layout.Rows {
		for _, seat := range row.Seats {
			if seat == nil {
				continue
			}
			r.seats[seat.ID] = seat
			r.rows[seat.RowLabel] = append(r.rows[seat.RowLabel], seat)
		}
	}
	for label := range r.rows {
		seats := r.rows[label]
		sort.SliceStable(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
	}

	r.pairCoupleSeats()
	return r
}

// pairCoupleSeats links couple halves. A half only pairs when both sides pick
// each other, so a malformed layout leaves seats unpaired rather than half-linked.
func (r *SelectionRules) pairCoupleSeats() {
	candidate := make(map[string]*entity.Seat)
	for _, seat := range r.seats {
		if p := r.findPartner(seat); p != nil {
			candidate[seat.ID] = p
		}
	}
	for id, p := range candidate {
		if back, ok := candidate[p.ID]; ok && back.ID == id {
			r.partners[id] = p
		}
	}
}

func (r *SelectionRules) findPartner(seat *entity.Seat) *entity.Seat {
	if !seat.IsCouple() || !seat.IsActive {
		return nil
	}

	var best *entity.Seat
	bestDist := math.Inf(1)
	for _, other := range r.rows[seat.RowLabel] {
		if other.ID == seat.ID || !other.IsCouple() || !other.IsActive {
			continue
		}
		if d := other.SeatNumber - seat.SeatNumber; d != 1 && d != -1 {
			continue
		}
		dist := math.Abs(other.PositionX - seat.PositionX)
		if dist > r.cfg.CoupleSeatWidth+positionEpsilon {
			continue
		}
		switch {
		case dist < bestDist-positionEpsilon:
			best, bestDist = other, dist
		case math.Abs(dist-bestDist) <= positionEpsilon && preferredPartner(seat, other):
			best = other
		}
	}
	return best
}

// preferredPartner breaks distance ties: even seats pair downwards, odd seats upwards.
func preferredPartner(seat, other *entity.Seat) bool {
	if seat.SeatNumber%2 == 0 {
		return other.SeatNumber == seat.SeatNumber-1
	}
	return other.SeatNumber == seat.SeatNumber+1
}

// Seat looks a seat up by id.
func (r *SelectionRules) Seat(id string) (*entity.Seat, bool) {
	s, ok := r.seats[id]
	return s, ok
}

// Partner returns the other half of a paired couple seat.
func (r *SelectionRules) Partner(id string) (*entity.Seat, bool) {
	p, ok := r.partners[id]
	return p, ok
}

// NextSelection applies the toggle without checking whether it is allowed.
// Couple halves move together.
func (r *SelectionRules) NextSelection(seatID string, sel Selection) Selection {
	ids := []string{seatID}
	if p, ok := r.partners[seatID]; ok {
		ids = append(ids, p.ID)
	}

	if sel.Contains(seatID) {
		return sel.Without(ids...)
	}
	return sel.With(ids...)
}

// CanToggle reports whether toggling seatID is allowed. Deselecting one's own
// seat ignores remote state but must not open a gap. Unknown seats are
// reported as inactive.
func (r *SelectionRules) CanToggle(seatID string, sel Selection, view AvailabilityView) (bool, Reason) {
	seat, ok := r.seats[seatID]
	if !ok {
		return false, ReasonInactive
	}
	if sel.Contains(seatID) {
		if _, paired := r.partners[seatID]; !paired && r.leavesGap(seat.RowLabel, r.NextSelection(seatID, sel)) {
			return false, ReasonGap
		}
		return true, ReasonNone
	}

	switch {
	case !seat.IsActive:
		return false, ReasonInactive
	case view.IsBooked(seatID):
		return false, ReasonBooked
	case view.IsLocked(seatID):
		return false, ReasonLocked
	}

	partner, paired := r.partners[seatID]
	if paired && (view.IsBooked(partner.ID) || view.IsLocked(partner.ID)) {
		return false, ReasonPartnerUnavailable
	}

	next := r.NextSelection(seatID, sel)
	if r.cfg.MaxSeats > 0 && next.Len() > r.cfg.MaxSeats {
		return false, ReasonLimitReached
	}

	if !paired && r.leavesGap(seat.RowLabel, next) {
		return false, ReasonGap
	}

	return true, ReasonNone
}

// Toggle combines CanToggle and NextSelection.
func (r *SelectionRules) Toggle(seatID string, sel Selection, view AvailabilityView) (Selection, Reason, bool) {
	if ok, reason := r.CanToggle(seatID, sel, view); !ok {
		return sel, reason, false
	}
	return r.NextSelection(seatID, sel), ReasonNone, true
}

// HasGap reports whether any row of sel strands a single eligible seat.
func (r *SelectionRules) HasGap(sel Selection) bool {
	rows := make(map[string]bool)
	for _, id := range sel.IDs() {
		if seat, ok := r.seats[id]; ok && !rows[seat.RowLabel] {
			rows[seat.RowLabel] = true
			if r.leavesGap(seat.RowLabel, sel) {
				return true
			}
		}
	}
	return false
}

// leavesGap reports whether sel strands exactly one eligible seat in row, either
// between two selected seats or between the selection and the row's edge.
// Eligible seats are active seats that are not part of a couple pair.
func (r *SelectionRules) leavesGap(row string, sel Selection) bool {
	var all, selected []int
	for _, seat := range r.rows[row] {
		if !seat.IsActive {
			continue
		}
		if _, paired := r.partners[seat.ID]; paired {
			continue
		}
		all = append(all, seat.SeatNumber)
		if sel.Contains(seat.ID) {
			selected = append(selected, seat.SeatNumber)
		}
	}
	if len(selected) == 0 {
		return false
	}

	eligible := make(map[int]bool, len(all))
	for _, n := range all {
		eligible[n] = true
	}

	lo, hi := selected[0], selected[len(selected)-1]
	below, above := 0, 0
	for _, n := range all {
		if n < lo {
			below++
		}
		if n > hi {
			above++
		}
	}
	if below == 1 && eligible[lo-1] {
		return true
	}
	if above == 1 && eligible[hi+1] {
		return true
	}

	for i := 1; i < len(selected); i++ {
		if selected[i]-selected[i-1] == 2 && eligible[selected[i]-1] {
			return true
		}
	}
	return false
}

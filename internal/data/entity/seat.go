package entity

import "strconv"

// SeatType tags a seat for pricing, colouring and pairing rules.
type SeatType string

const (
	SeatTypeStandard   SeatType = "standard"
	SeatTypeVIP        SeatType = "vip"
	SeatTypeCouple     SeatType = "couple"
	SeatTypeAccessible SeatType = "accessible"
)

type Seat struct {
	ID         string   `json:"id"`
	RowLabel   string   `json:"rowLabel"`
	SeatNumber int      `json:"seatNumber"` // ordinal inside the row
	PositionX  float64  `json:"positionX"`  // layout coordinate
	SeatType   SeatType `json:"seatType"`
	IsActive   bool     `json:"isActive"`
}

// IsCouple reports whether the seat is one half of a couple seat.
func (s *Seat) IsCouple() bool {
	return s.SeatType == SeatTypeCouple
}

// Label returns the human label, e.g. A7.
func (s *Seat) Label() string {
	return s.RowLabel + strconv.Itoa(s.SeatNumber)
}

type SeatRow struct {
	RowLabel string  `json:"rowLabel"`
	Seats    []*Seat `json:"seats"`
}

type SeatTypeColor struct {
	Type  SeatType `json:"type"`
	Color string   `json:"color"`
}

// SeatLayout is the room layout served by the layout service.
type SeatLayout struct {
	Rows      []SeatRow       `json:"rows"`
	SeatTypes []SeatTypeColor `json:"seatTypes"`
}

// Seats flattens the layout in row order.
func (l *SeatLayout) Seats() []*Seat {
	var seats []*Seat
	for _, row := range l.Rows {
		seats = append(seats, row.Seats...)
	}
	return seats
}

// Color returns the configured color for a seat type, or "" when none.
func (l *SeatLayout) Color(t SeatType) string {
	for _, st := range l.SeatTypes {
		if st.Type == t {
			return st.Color
		}
	}
	return ""
}

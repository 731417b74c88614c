package response

import (
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/reservation"
)

type SeatResponse struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	SeatNumber int             `json:"seat_number"`
	PositionX  float64         `json:"position_x"`
	SeatType   entity.SeatType `json:"seat_type"`
	Color      string          `json:"color,omitempty"`
	Status     string          `json:"status"`
	PartnerID  string          `json:"partner_id,omitempty"`
}

type RowResponse struct {
	RowLabel string         `json:"row_label"`
	Seats    []SeatResponse `json:"seats"`
}

type DraftResponse struct {
	ID     string               `json:"id"`
	Status entity.BookingStatus `json:"status"`
	State  string               `json:"state"`
}

type SessionResponse struct {
	SessionID   string         `json:"session_id"`
	ShowtimeID  string         `json:"showtime_id"`
	State       string         `json:"state"`
	Error       string         `json:"error,omitempty"`
	SeatMap     []RowResponse  `json:"seat_map"`
	Selection   []string       `json:"selection"`
	SecondsLeft int            `json:"seconds_left"`
	Countdown   string         `json:"countdown"`
	Expired     bool           `json:"expired"`
	Draft       *DraftResponse `json:"draft,omitempty"`
}

type ToggleResponse struct {
	Result  string           `json:"result"`
	Reason  string           `json:"reason,omitempty"`
	Session *SessionResponse `json:"session"`
}

type PaymentStartResponse struct {
	PaymentID  string               `json:"payment_id"`
	BookingID  string               `json:"booking_id"`
	Status     entity.PaymentStatus `json:"status"`
	PaymentURL string               `json:"payment_url,omitempty"`
}

// Helper converters
func SessionToResponse(snap reservation.Snapshot) *SessionResponse {
	res := &SessionResponse{
		SessionID:   snap.ID,
		ShowtimeID:  snap.ShowtimeID,
		State:       string(snap.State),
		SeatMap:     make([]RowResponse, 0, len(snap.Rows)),
		Selection:   snap.Selection,
		SecondsLeft: snap.SecondsLeft,
		Countdown:   snap.Countdown,
		Expired:     snap.Expired,
	}
	if snap.Err != nil {
		res.Error = "Seat map could not be loaded"
	}
	if res.Selection == nil {
		res.Selection = []string{}
	}

	for _, row := range snap.Rows {
		rr := RowResponse{RowLabel: row.RowLabel, Seats: make([]SeatResponse, 0, len(row.Seats))}
		for _, s := range row.Seats {
			rr.Seats = append(rr.Seats, SeatResponse{
				ID:         s.ID,
				Label:      s.Label,
				SeatNumber: s.SeatNumber,
				PositionX:  s.PositionX,
				SeatType:   s.SeatType,
				Color:      s.Color,
				Status:     string(s.Status),
				PartnerID:  s.PartnerID,
			})
		}
		res.SeatMap = append(res.SeatMap, rr)
	}

	if snap.Draft != nil {
		res.Draft = &DraftResponse{ID: snap.Draft.ID, Status: snap.Draft.Status, State: string(snap.DraftState)}
	}
	return res
}

func PaymentStartToResponse(p *entity.Payment) *PaymentStartResponse {
	return &PaymentStartResponse{
		PaymentID:  p.ID,
		BookingID:  p.BookingID,
		Status:     p.Status,
		PaymentURL: p.PaymentURL,
	}
}

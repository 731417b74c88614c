package response

import (
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/reservation"
)

type BookingItemResponse struct {
	SeatID     string `json:"seat_id"`
	SeatLabel  string `json:"seat_label,omitempty"`
	PriceMinor int64  `json:"price_minor"`
}

type BookingSummaryResponse struct {
	ID               string                `json:"id"`
	Status           entity.BookingStatus  `json:"status"`
	Items            []BookingItemResponse `json:"items"`
	TotalAmountMinor int64                 `json:"total_amount_minor"`
}

type PaymentStatusResponse struct {
	PaymentID     string                  `json:"payment_id,omitempty"`
	PaymentStatus entity.PaymentStatus    `json:"payment_status,omitempty"`
	Outcome       entity.PaymentOutcome   `json:"outcome"`
	PollState     string                  `json:"poll_state"`
	Attempts      int                     `json:"attempts"`
	Booking       *BookingSummaryResponse `json:"booking,omitempty"`
	View          reservation.StatusView  `json:"view"`
}

func PaymentStatusToResponse(res reservation.PollResult) *PaymentStatusResponse {
	out := &PaymentStatusResponse{
		Outcome:   res.Outcome,
		PollState: string(res.State),
		Attempts:  res.Attempts,
		View:      reservation.BuildStatusView(res),
	}
	if res.Payment != nil {
		out.PaymentID = res.Payment.ID
		out.PaymentStatus = res.Payment.Status
	}
	if res.Booking != nil {
		b := &BookingSummaryResponse{
			ID:               res.Booking.ID,
			Status:           res.Booking.Status,
			Items:            make([]BookingItemResponse, 0, len(res.Booking.Items)),
			TotalAmountMinor: res.Booking.TotalAmountMinor,
		}
		for _, it := range res.Booking.Items {
			b.Items = append(b.Items, BookingItemResponse{SeatID: it.SeatID, SeatLabel: it.SeatLabel, PriceMinor: it.PriceMinor})
		}
		out.Booking = b
	}
	return out
}

package entity

import (
	"encoding/json"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusRefunding BookingStatus = "refunding"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// UnmarshalJSON accepts the backend's casing ("Pending", "PENDING") and the
// British spelling of canceled.
func (s *BookingStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "cancelled" {
		v = string(BookingStatusCanceled)
	}
	*s = BookingStatus(v)
	return nil
}

func (s BookingStatus) IsPending() bool {
	return s == BookingStatusPending
}

type BookingItem struct {
	SeatID     string `json:"seatId"`
	SeatLabel  string `json:"seatLabel,omitempty"`
	PriceMinor int64  `json:"priceMinor"`
}

type Booking struct {
	ID               string        `json:"id"`
	ShowtimeID       string        `json:"showtimeId,omitempty"`
	Status           BookingStatus `json:"status"`
	Items            []BookingItem `json:"items,omitempty"`
	TotalAmountMinor int64         `json:"totalAmountMinor"`
	CreatedAt        time.Time     `json:"createdAt,omitempty"`
	ExpiresAt        *time.Time    `json:"expiresAt,omitempty"`
}

// BookingDraft is the local view of a draft created by this client.
type BookingDraft struct {
	ID     string        `json:"id"`
	Status BookingStatus `json:"status"`
}

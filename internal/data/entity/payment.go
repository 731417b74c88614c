package entity

import (
	"encoding/json"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "success", "completed", "paid":
		v = string(PaymentStatusSucceeded)
	case "cancelled":
		v = string(PaymentStatusCanceled)
	}
	*s = PaymentStatus(v)
	return nil
}

// PaymentOutcome is the result tag the provider appends to the return URL.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomePending PaymentOutcome = "pending"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
)

// ParsePaymentOutcome normalises the tag; anything unrecognised is treated as pending.
func ParsePaymentOutcome(tag string) PaymentOutcome {
	switch PaymentOutcome(strings.ToLower(strings.TrimSpace(tag))) {
	case PaymentOutcomeSuccess:
		return PaymentOutcomeSuccess
	case PaymentOutcomeFailed:
		return PaymentOutcomeFailed
	default:
		return PaymentOutcomePending
	}
}

type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"bookingId"`
	Status        PaymentStatus `json:"status"`
	Provider      string        `json:"provider"`
	CreatedAt     time.Time     `json:"createdAt"`
	ProviderTxnID *string       `json:"providerTxnId,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
}

package request

// PaymentStatusRequest is read from the provider's return URL query.
type PaymentStatusRequest struct {
	PaymentID string `validate:"required,max=64"`
	Outcome   string `validate:"omitempty,oneof=success pending failed"`
	BookingID string `validate:"omitempty,max=64"`
}

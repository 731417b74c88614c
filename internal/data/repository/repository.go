package repository

import (
	"cinema-reservation/pkg/apiclient"

	"go.uber.org/zap"
)

// Repository groups the booking backend gateways.
type Repository struct {
	Seat    SeatRepository
	Booking BookingRepository
	Payment PaymentRepository
}

func NewRepository(client apiclient.Requester, log *zap.Logger) *Repository {
	return &Repository{
		Seat:    NewSeatRepository(client, log),
		Booking: NewBookingRepository(client, log),
		Payment: NewPaymentRepository(client, log),
	}
}

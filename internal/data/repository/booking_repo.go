package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apiclient"

	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, showtimeID string, seatIDs []string) (*entity.Booking, error)
	Cancel(ctx context.Context, bookingID, reason string) error
	FindByID(ctx context.Context, bookingID string) (*entity.Booking, error)

	// CancelRequest builds, without sending, the cancel call used on page unload.
	CancelRequest(ctx context.Context, bookingID, reason, token string) (*http.Request, error)
}

type bookingRepository struct {
	client apiclient.Requester
	log    *zap.Logger
}

func NewBookingRepository(client apiclient.Requester, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		client: client,
		log:    log.With(zap.String("repository", "booking")),
	}
}

type createBookingBody struct {
	ShowtimeID string   `json:"showtimeId"`
	SeatIDs    []string `json:"seatIds"`
}

type cancelBookingBody struct {
	Reason string `json:"reason"`
}

func (r *bookingRepository) Create(ctx context.Context, showtimeID string, seatIDs []string) (*entity.Booking, error) {
	var booking entity.Booking
	body := createBookingBody{ShowtimeID: showtimeID, SeatIDs: seatIDs}

	if err := r.client.Do(ctx, http.MethodPost, "/api/bookings", body, &booking); err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("showtime_id", showtimeID),
			zap.Int("seats", len(seatIDs)),
		)
		return nil, fmt.Errorf("create booking for showtime %s: %w", showtimeID, err)
	}

	return &booking, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, bookingID, reason string) error {
	if err := r.client.Do(ctx, http.MethodPost, cancelPath(bookingID), cancelBookingBody{Reason: reason}, nil); err != nil {
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *bookingRepository) CancelRequest(ctx context.Context, bookingID, reason, token string) (*http.Request, error) {
	req, err := r.client.NewRequest(ctx, http.MethodPost, cancelPath(bookingID), cancelBookingBody{Reason: reason}, token)
	if err != nil {
		return nil, fmt.Errorf("build cancel request for booking %s: %w", bookingID, err)
	}
	return req, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	var booking entity.Booking
	path := "/api/bookings/" + url.PathEscape(bookingID)

	if err := r.client.Do(ctx, http.MethodGet, path, nil, &booking); err != nil {
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}

	return &booking, nil
}

func cancelPath(bookingID string) string {
	return fmt.Sprintf("/api/bookings/%s/cancel", url.PathEscape(bookingID))
}

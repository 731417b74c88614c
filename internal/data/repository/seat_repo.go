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

type SeatRepository interface {
	GetSeatLayout(ctx context.Context, cinemaID, roomID string) (*entity.SeatLayout, error)
	GetLockedSeats(ctx context.Context, showtimeID string) ([]string, error)
}

type seatRepository struct {
	client apiclient.Requester
	log    *zap.Logger
}

func NewSeatRepository(client apiclient.Requester, log *zap.Logger) SeatRepository {
	return &seatRepository{
		client: client,
		log:    log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) GetSeatLayout(ctx context.Context, cinemaID, roomID string) (*entity.SeatLayout, error) {
	path := fmt.Sprintf("/api/cinemas/%s/rooms/%s/seat-layout", url.PathEscape(cinemaID), url.PathEscape(roomID))

	var layout entity.SeatLayout
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &layout); err != nil {
		r.log.Error("Failed to fetch seat layout",
			zap.Error(err),
			zap.String("cinema_id", cinemaID),
			zap.String("room_id", roomID),
		)
		return nil, fmt.Errorf("get seat layout %s/%s: %w", cinemaID, roomID, err)
	}

	return &layout, nil
}

type lockedSeatsResponse struct {
	LockedSeatIDs []string `json:"lockedSeatIds"`
}

func (r *seatRepository) GetLockedSeats(ctx context.Context, showtimeID string) ([]string, error) {
	path := fmt.Sprintf("/api/showtimes/%s/locked-seats", url.PathEscape(showtimeID))

	var out lockedSeatsResponse
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		r.log.Error("Failed to fetch locked seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID),
		)
		return nil, fmt.Errorf("get locked seats for showtime %s: %w", showtimeID, err)
	}

	return out.LockedSeatIDs, nil
}

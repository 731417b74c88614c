package usecase

import (
	"context"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type PaymentService interface {
	// Status polls the booking behind a payment until it settles and returns the page model.
	Status(ctx context.Context, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error)
}

type paymentService struct {
	poller *reservation.StatusPoller
	log    *zap.Logger
}

func NewPaymentService(repo *repository.Repository, infra Infra, config *utils.Config, log *zap.Logger) PaymentService {
	poller := reservation.NewStatusPoller(repo.Payment, repo.Booking, infra.Clock, reservation.PollConfig{
		SuccessMaxAttempts: config.Poll.SuccessMaxAttempts,
		SuccessDelay:       config.Poll.SuccessDelay,
		DefaultMaxAttempts: config.Poll.DefaultMaxAttempts,
		DefaultDelay:       config.Poll.DefaultDelay,
	}, infra.Metrics, log)

	return &paymentService{
		poller: poller,
		log:    log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) Status(ctx context.Context, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error) {
	outcome := entity.ParsePaymentOutcome(req.Outcome)
	res := s.poller.Poll(ctx, req.PaymentID, outcome, req.BookingID)

	if res.State == reservation.PollAbandoned {
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, context.Canceled
	}

	s.log.Info("Payment status resolved",
		zap.String("payment_id", req.PaymentID),
		zap.String("outcome", string(outcome)),
		zap.String("state", string(res.State)),
		zap.Int("attempts", res.Attempts),
	)
	return response.PaymentStatusToResponse(res), nil
}

package reservation

import (
	"context"
	"errors"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/apiclient"
	"cinema-reservation/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// PollState is the terminal state of one status poll.
type PollState string

const (
	// PollStable means the booking left Pending, or the provider reported failure.
	PollStable PollState = "stable"
	// PollGaveUp means the retry budget ran out while the booking was still settling.
	PollGaveUp    PollState = "gave_up"
	PollNotFound  PollState = "not_found"
	PollFailed    PollState = "failed"
	PollAbandoned PollState = "abandoned"
)

type PollConfig struct {
	SuccessMaxAttempts int
	SuccessDelay       time.Duration
	DefaultMaxAttempts int
	DefaultDelay       time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		SuccessMaxAttempts: 8,
		SuccessDelay:       1500 * time.Millisecond,
		DefaultMaxAttempts: 3,
		DefaultDelay:       3 * time.Second,
	}
}

type PollResult struct {
	State    PollState
	Outcome  entity.PaymentOutcome
	Payment  *entity.Payment
	Booking  *entity.Booking
	Attempts int
	Err      error
}

// StatusPoller follows a booking after the user returns from the payment
// provider until it settles or the retry budget is spent.
type StatusPoller struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	clock    clockwork.Clock
	cfg      PollConfig
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewStatusPoller(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	clock clockwork.Clock,
	cfg PollConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) *StatusPoller {
	def := DefaultPollConfig()
	if cfg.SuccessMaxAttempts <= 0 {
		cfg.SuccessMaxAttempts = def.SuccessMaxAttempts
	}
	if cfg.DefaultMaxAttempts <= 0 {
		cfg.DefaultMaxAttempts = def.DefaultMaxAttempts
	}
	return &StatusPoller{
		payments: payments,
		bookings: bookings,
		clock:    clock,
		cfg:      cfg,
		metrics:  m,
		log:      log.With(zap.String("service", "payment_poller")),
	}
}

// budget returns the attempt ceiling and retry delay for an outcome tag.
func (p *StatusPoller) budget(outcome entity.PaymentOutcome) (int, time.Duration) {
	if outcome == entity.PaymentOutcomeSuccess {
		return p.cfg.SuccessMaxAttempts, p.cfg.SuccessDelay
	}
	return p.cfg.DefaultMaxAttempts, p.cfg.DefaultDelay
}

// Poll always terminates: on a settled booking, a non-tolerated error, an
// exhausted budget or a cancelled ctx.
func (p *StatusPoller) Poll(ctx context.Context, paymentID string, outcome entity.PaymentOutcome, fallbackBookingID string) PollResult {
	res := p.poll(ctx, paymentID, outcome, fallbackBookingID)
	p.metrics.PollResultsTotal.WithLabelValues(string(res.State), string(outcome)).Inc()
	return res
}

func (p *StatusPoller) poll(ctx context.Context, paymentID string, outcome entity.PaymentOutcome, fallbackBookingID string) PollResult {
	res := PollResult{Outcome: outcome}

	payment, err := p.payments.FindByID(ctx, paymentID)
	switch {
	case err == nil && payment != nil:
		res.Payment = payment
	case err == nil || apiclient.IsNotFound(err):
		res.State = PollNotFound
		return res
	case isCanceled(ctx, err):
		res.State, res.Err = PollAbandoned, err
		return res
	default:
		p.log.Error("Failed to fetch payment", zap.String("payment_id", paymentID), zap.Error(err))
		res.State, res.Err = PollFailed, err
		return res
	}

	bookingID := payment.BookingID
	if bookingID == "" {
		bookingID = fallbackBookingID
	}
	if bookingID == "" {
		res.State = PollNotFound
		return res
	}

	maxAttempts, delay := p.budget(outcome)
	for {
		res.Attempts++
		p.metrics.PollFetchesTotal.Inc()

		booking, err := p.bookings.FindByID(ctx, bookingID)
		switch {
		case err == nil:
			res.Booking, res.Err = booking, nil
			if !booking.Status.IsPending() || outcome == entity.PaymentOutcomeFailed {
				res.State = PollStable
				return res
			}
		case apiclient.IsNotFound(err) && outcome == entity.PaymentOutcomeSuccess:
			// the booking can lag behind the payment webhook
			res.Err = err
		case apiclient.IsNotFound(err):
			res.State, res.Err = PollNotFound, err
			return res
		case isCanceled(ctx, err):
			res.State, res.Err = PollAbandoned, err
			return res
		default:
			p.log.Error("Failed to fetch booking",
				zap.String("booking_id", bookingID),
				zap.Int("attempt", res.Attempts),
				zap.Error(err),
			)
			res.State, res.Err = PollFailed, err
			return res
		}

		if res.Attempts >= maxAttempts {
			res.State = PollGaveUp
			return res
		}

		p.log.Debug("Booking still settling, retrying",
			zap.String("booking_id", bookingID),
			zap.Int("attempt", res.Attempts),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			res.State, res.Err = PollAbandoned, ctx.Err()
			return res
		case <-p.clock.After(delay):
		}
	}
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

package usecase

import (
	"context"
	"fmt"
	"testing"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// canceledPayments fails every lookup with a wrapped cancellation while the
// caller's context is still live, as a transport shutting down would.
type canceledPayments struct{}

func (canceledPayments) Create(context.Context, string, string) (*entity.Payment, error) {
	return nil, fmt.Errorf("create payment: %w", context.Canceled)
}

func (canceledPayments) FindByID(context.Context, string) (*entity.Payment, error) {
	return nil, fmt.Errorf("find payment: %w", context.Canceled)
}

func TestPaymentService_Status_Confirmed(t *testing.T) {
	ts := newTestService(t)

	res, err := ts.Payment.Status(authed("tok-1"), &request.PaymentStatusRequest{PaymentID: "pay-1", Outcome: "success"})
	require.NoError(t, err)

	assert.Equal(t, string(reservation.PollStable), res.PollState)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "pay-1", res.PaymentID)
	require.NotNil(t, res.Booking)
	assert.Equal(t, "bk-1", res.Booking.ID)
	assert.EqualValues(t, 9000, res.Booking.TotalAmountMinor)
	assert.Equal(t, "Payment successful", res.View.Title)
}

func TestPaymentService_Status_NotFound(t *testing.T) {
	ts := newTestService(t)

	res, err := ts.Payment.Status(authed("tok-1"), &request.PaymentStatusRequest{PaymentID: "missing"})
	require.NoError(t, err)

	assert.Equal(t, string(reservation.PollNotFound), res.PollState)
	assert.Equal(t, "Payment not found", res.View.Title)
}

func TestPaymentService_Status_GivesUpWhilePending(t *testing.T) {
	ts := newTestService(t)
	ts.backend.bookingStatus.Store("pending")

	res, err := ts.Payment.Status(authed("tok-1"), &request.PaymentStatusRequest{PaymentID: "pay-1", Outcome: "pending"})
	require.NoError(t, err)

	assert.Equal(t, string(reservation.PollGaveUp), res.PollState)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Payment processing", res.View.Title)
}

func TestPaymentService_Status_Abandoned(t *testing.T) {
	ts := newTestService(t)
	ctx, cancel := context.WithCancel(authed("tok-1"))
	cancel()

	_, err := ts.Payment.Status(ctx, &request.PaymentStatusRequest{PaymentID: "pay-1", Outcome: "success"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaymentService_Status_AbandonedWithLiveContext(t *testing.T) {
	poller := reservation.NewStatusPoller(canceledPayments{}, nil, clockwork.NewFakeClock(),
		reservation.DefaultPollConfig(), metrics.NewNop(), zap.NewNop())
	svc := &paymentService{poller: poller, log: zap.NewNop()}

	res, err := svc.Status(authed("tok-1"), &request.PaymentStatusRequest{PaymentID: "pay-1", Outcome: "success"})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

package reservation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/metrics"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

const (
	DefaultCleanupReason = "User left confirmation page"

	cleanupTimeout = 10 * time.Second
)

type DraftState string

const (
	DraftStateNone       DraftState = "no_draft"
	DraftStateCreating   DraftState = "creating"
	DraftStatePending    DraftState = "pending"
	DraftStateConfirming DraftState = "confirming"
	DraftStateCanceled   DraftState = "canceled"
)

// Beacon delivers an already built request even after its caller has gone away.
type Beacon interface {
	Send(req *http.Request) bool
}

// TokenFunc returns the caller's current bearer token.
type TokenFunc func() string

type DraftConfig struct {
	CleanupReason string
}

// DraftLifecycle owns the draft booking created from one seat selection. It
// cancels the draft at most once, from whichever of Teardown or Unload runs
// first, and never after payment navigation has been marked.
type DraftLifecycle struct {
	mu         sync.Mutex
	state      DraftState
	draft      entity.BookingDraft
	navigating bool
	cleanedUp  bool
	// leaving is set when a teardown arrives while the draft is still being created.
	leaving bool

	bookings repository.BookingRepository
	payments repository.PaymentRepository
	beacon   Beacon
	token    TokenFunc
	reason   string
	wg       sync.WaitGroup
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewDraftLifecycle(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	beacon Beacon,
	token TokenFunc,
	cfg DraftConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) *DraftLifecycle {
	if cfg.CleanupReason == "" {
		cfg.CleanupReason = DefaultCleanupReason
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &DraftLifecycle{
		state:    DraftStateNone,
		bookings: bookings,
		payments: payments,
		beacon:   beacon,
		token:    token,
		reason:   cfg.CleanupReason,
		metrics:  m,
		log:      log.With(zap.String("service", "draft")),
	}
}

func (d *DraftLifecycle) State() DraftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Draft returns the current draft, if one was created.
func (d *DraftLifecycle) Draft() (entity.BookingDraft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft, d.draft.ID != ""
}

func (d *DraftLifecycle) NavigatingToPayment() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.navigating
}

// Create asks the backend for a draft booking. On failure the lifecycle goes
// back to NoDraft so the user can retry.
func (d *DraftLifecycle) Create(ctx context.Context, showtimeID string, seatIDs []string) (entity.BookingDraft, error) {
	d.mu.Lock()
	switch {
	case d.cleanedUp || d.leaving:
		d.mu.Unlock()
		return entity.BookingDraft{}, ErrSessionClosed
	case d.state != DraftStateNone:
		d.mu.Unlock()
		return entity.BookingDraft{}, ErrDraftExists
	}
	d.state = DraftStateCreating
	d.mu.Unlock()

	booking, err := d.bookings.Create(ctx, showtimeID, seatIDs)

	d.mu.Lock()
	if err != nil {
		d.state = DraftStateNone
		d.mu.Unlock()
		d.metrics.DraftsCreatedTotal.WithLabelValues("failed").Inc()
		return entity.BookingDraft{}, err
	}

	status := booking.Status
	if status == "" {
		status = entity.BookingStatusPending
	}
	d.draft = entity.BookingDraft{ID: booking.ID, Status: status}
	d.state = DraftStatePending
	draft, leaving := d.draft, d.leaving
	d.mu.Unlock()

	d.metrics.DraftsCreatedTotal.WithLabelValues("created").Inc()
	d.log.Info("Draft booking created",
		zap.String("booking_id", draft.ID),
		zap.String("showtime_id", showtimeID),
		zap.Int("seats", len(seatIDs)),
	)

	// the owner left while the request was in flight
	if leaving {
		d.Teardown()
	}
	return draft, nil
}

// MarkNavigatingToPayment suppresses cleanup. It must be called before
// anything that can lead to the page being torn down for the redirect.
func (d *DraftLifecycle) MarkNavigatingToPayment() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.draft.ID == "" {
		return ErrNoDraft
	}
	if d.cleanedUp || !d.draft.Status.IsPending() {
		return ErrDraftNotPending
	}
	d.navigating = true
	d.state = DraftStateConfirming
	return nil
}

// ClearNavigatingToPayment re-arms cleanup after a payment hand-off that never happened.
func (d *DraftLifecycle) ClearNavigatingToPayment() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.navigating = false
	if d.state == DraftStateConfirming {
		d.state = DraftStatePending
	}
}

// BeginPayment marks payment navigation and creates the payment. A failed
// payment creation clears the mark again.
func (d *DraftLifecycle) BeginPayment(ctx context.Context, provider string) (*entity.Payment, error) {
	if err := d.MarkNavigatingToPayment(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	bookingID := d.draft.ID
	d.mu.Unlock()

	payment, err := d.payments.Create(ctx, bookingID, provider)
	if err != nil {
		d.ClearNavigatingToPayment()
		return nil, err
	}
	return payment, nil
}

// tryTrip claims the single cleanup slot. It only succeeds for a pending draft
// that is not on its way to payment.
func (d *DraftLifecycle) tryTrip() (entity.BookingDraft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cleanedUp || d.draft.ID == "" || !d.draft.Status.IsPending() || d.navigating {
		return entity.BookingDraft{}, false
	}

	d.cleanedUp = true
	claimed := d.draft
	d.draft.Status = entity.BookingStatusCanceled
	d.state = DraftStateCanceled
	return claimed, true
}

func (d *DraftLifecycle) markLeaving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DraftStateCreating {
		return false
	}
	d.leaving = true
	return true
}

// Teardown is the in-app navigation path. The cancel call runs in the
// background and its errors are only logged.
func (d *DraftLifecycle) Teardown() {
	if d.markLeaving() {
		return
	}

	draft, ok := d.tryTrip()
	if !ok {
		return
	}

	token := d.token()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(utils.SetTokenContext(context.Background(), token), cleanupTimeout)
		defer cancel()

		if err := d.bookings.Cancel(ctx, draft.ID, d.reason); err != nil {
			d.metrics.DraftCleanupsTotal.WithLabelValues("teardown", "failed").Inc()
			d.log.Warn("Draft cleanup failed", zap.String("booking_id", draft.ID), zap.Error(err))
			return
		}
		d.metrics.DraftCleanupsTotal.WithLabelValues("teardown", "sent").Inc()
		d.log.Info("Draft canceled", zap.String("booking_id", draft.ID), zap.String("trigger", "teardown"))
	}()
}

// Unload is the page-close path. The cancel request is built before Unload
// returns and handed to the beacon, which delivers it independently of the caller.
func (d *DraftLifecycle) Unload() bool {
	if d.markLeaving() {
		return false
	}

	draft, ok := d.tryTrip()
	if !ok {
		return false
	}

	req, err := d.bookings.CancelRequest(context.Background(), draft.ID, d.reason, d.token())
	if err != nil {
		d.metrics.DraftCleanupsTotal.WithLabelValues("unload", "failed").Inc()
		d.log.Warn("Draft cleanup request could not be built", zap.String("booking_id", draft.ID), zap.Error(err))
		return false
	}

	if !d.beacon.Send(req) {
		d.metrics.DraftCleanupsTotal.WithLabelValues("unload", "dropped").Inc()
		d.log.Warn("Draft cleanup beacon dropped", zap.String("booking_id", draft.ID))
		return false
	}

	d.metrics.DraftCleanupsTotal.WithLabelValues("unload", "queued").Inc()
	d.log.Info("Draft canceled", zap.String("booking_id", draft.ID), zap.String("trigger", "unload"))
	return true
}

// Wait blocks until background cleanups have finished.
func (d *DraftLifecycle) Wait() {
	d.wg.Wait()
}

package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/metrics"
	"cinema-reservation/pkg/realtime"
	"cinema-reservation/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SessionState string

const (
	SessionLoading SessionState = "loading"
	SessionReady   SessionState = "ready"
	SessionFailed  SessionState = "failed"
	SessionClosed  SessionState = "closed"
)

type SessionConfig struct {
	HoldSeconds   int
	CleanupReason string
	Rules         RuleConfig
}

// SessionDeps are the collaborators a Session talks to.
type SessionDeps struct {
	Seats      repository.SeatRepository
	Bookings   repository.BookingRepository
	Payments   repository.PaymentRepository
	Subscriber realtime.Subscriber
	Beacon     Beacon
	Clock      clockwork.Clock
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// Session is one user's seat selection for one showtime. It owns its live
// subscription, hold timer and draft, and must be closed exactly once.
type Session struct {
	mu         sync.Mutex
	id         string
	showtime   entity.Showtime
	cfg        SessionConfig
	state      SessionState
	err        error
	layout     *entity.SeatLayout
	rules      *SelectionRules
	view       AvailabilityView
	selection  Selection
	confirming bool
	token      string
	lastSeen   time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	sub       realtime.Subscription
	timer     *HoldTimer
	draft     *DraftLifecycle
	closeOnce sync.Once

	deps    SessionDeps
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewSession(id string, showtime entity.Showtime, token string, cfg SessionConfig, deps SessionDeps) *Session {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Subscriber == nil {
		deps.Subscriber = realtime.NopSubscriber{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		showtime: showtime,
		cfg:      cfg,
		state:    SessionLoading,
		token:    token,
		lastSeen: deps.Clock.Now(),
		ctx:      ctx,
		cancel:   cancel,
		deps:     deps,
		metrics:  deps.Metrics,
		log: deps.Log.With(
			zap.String("service", "session"),
			zap.String("session_id", id),
			zap.String("showtime_id", showtime.ID),
		),
	}

	s.timer = NewHoldTimer(deps.Clock, cfg.HoldSeconds, s.onHoldExpired)
	s.draft = NewDraftLifecycle(deps.Bookings, deps.Payments, deps.Beacon, s.currentToken,
		DraftConfig{CleanupReason: cfg.CleanupReason}, deps.Metrics, deps.Log)

	s.metrics.ActiveSessions.Inc()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Showtime() entity.Showtime { return s.showtime }

// Draft exposes the draft lifecycle, mainly for tests and the payment hand-off.
func (s *Session) Draft() *DraftLifecycle { return s.draft }

// Touch records activity for the idle sweeper.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.deps.Clock.Now()
}

// OwnedBy reports whether token belongs to whoever opened the session.
// A session opened without a token has no owner.
func (s *Session) OwnedBy(token string) bool {
	owner := s.currentToken()
	return owner == "" || owner == token
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Start joins the showtime group, then loads the layout and the lock snapshot
// concurrently. Live events that arrive before the snapshot are merged into the
// same view. A load failure leaves the session in SessionFailed.
func (s *Session) Start(ctx context.Context) error {
	sub, err := s.deps.Subscriber.Subscribe(s.ctx, s.showtime.Group(), s.onLockEvent)
	if err != nil {
		// the page still works from the snapshot, it just goes stale
		s.log.Warn("Live seat updates unavailable", zap.Error(err))
	} else {
		s.mu.Lock()
		if s.state == SessionClosed {
			s.mu.Unlock()
			sub.Close()
			return ErrSessionClosed
		}
		s.sub = sub
		s.mu.Unlock()
	}

	ctx, cancel := context.WithCancel(utils.SetTokenContext(ctx, s.currentToken()))
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	var (
		layout *entity.SeatLayout
		locked []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		layout, err = s.deps.Seats.GetSeatLayout(gctx, s.showtime.CinemaID, s.showtime.RoomID)
		return err
	})
	g.Go(func() error {
		var err error
		locked, err = s.deps.Seats.GetLockedSeats(gctx, s.showtime.ID)
		return err
	})
	err = g.Wait()

	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		s.state = SessionFailed
		s.err = err
		s.mu.Unlock()
		s.log.Error("Failed to load seat map", zap.Error(err))
		return fmt.Errorf("load seat map: %w", err)
	}

	s.layout = layout
	s.rules = NewSelectionRules(layout, s.cfg.Rules)
	s.view = WithLocked(s.view, locked)
	s.state = SessionReady
	s.mu.Unlock()

	// no-op if Close already stopped the timer
	s.timer.Start()

	s.log.Info("Seat selection session ready",
		zap.Int("seats", len(layout.Seats())),
		zap.Int("locked", len(locked)),
	)
	return nil
}

func (s *Session) onLockEvent(ev entity.LockEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return
	}

	next, err := Apply(s.view, ev)
	if err != nil {
		s.metrics.LockEventsTotal.WithLabelValues("unknown").Inc()
		s.log.Warn("Ignoring lock event", zap.Error(err))
		return
	}
	s.view = next
	s.metrics.LockEventsTotal.WithLabelValues(ev.Action.String()).Inc()
}

func (s *Session) onHoldExpired() {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	cleared := s.selection.Len()
	s.selection = Selection{}
	s.mu.Unlock()

	s.metrics.HoldExpirationsTotal.Inc()
	s.log.Info("Seat hold expired", zap.Int("cleared", cleared))
}

func (s *Session) readyLocked() error {
	switch s.state {
	case SessionClosed:
		return ErrSessionClosed
	case SessionReady:
		return nil
	default:
		return ErrSessionNotReady
	}
}

type ToggleResult struct {
	Accepted  bool
	Reason    Reason
	Selection []string
}

// ToggleSeat selects or deselects a seat. A rule violation is not an error:
// the result reports it and the selection is unchanged.
func (s *Session) ToggleSeat(seatID string) (ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return ToggleResult{}, err
	}
	if _, ok := s.rules.Seat(seatID); !ok {
		return ToggleResult{}, ErrSeatNotFound
	}
	if _, ok := s.draft.Draft(); ok {
		return ToggleResult{}, ErrDraftExists
	}

	var (
		next     Selection
		reason   Reason
		accepted bool
	)
	switch {
	case s.timer.Expired():
		next, reason = s.selection, ReasonExpired
	case s.confirming:
		next, reason = s.selection, ReasonConfirming
	default:
		next, reason, accepted = s.rules.Toggle(seatID, s.selection, s.view)
	}
	s.selection = next

	if accepted {
		s.metrics.SeatTogglesTotal.WithLabelValues("accepted", "").Inc()
	} else {
		s.metrics.SeatTogglesTotal.WithLabelValues("rejected", string(reason)).Inc()
		s.log.Debug("Seat toggle rejected", zap.String("seat_id", seatID), zap.String("reason", string(reason)))
	}

	return ToggleResult{Accepted: accepted, Reason: reason, Selection: next.IDs()}, nil
}

// Confirm turns the current selection into a draft booking. On failure the
// selection is kept and the user may retry.
func (s *Session) Confirm(ctx context.Context) (entity.BookingDraft, error) {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return entity.BookingDraft{}, err
	}
	switch {
	case s.selection.IsEmpty():
		s.mu.Unlock()
		return entity.BookingDraft{}, ErrEmptySelection
	case s.rules.HasGap(s.selection):
		s.mu.Unlock()
		return entity.BookingDraft{}, ErrSelectionGap
	case s.timer.Expired():
		s.mu.Unlock()
		return entity.BookingDraft{}, ErrHoldExpired
	case s.confirming:
		s.mu.Unlock()
		return entity.BookingDraft{}, ErrConfirmInFlight
	}
	s.confirming = true
	seatIDs := s.selection.IDs()
	token := s.token
	s.mu.Unlock()

	draft, err := s.draft.Create(utils.SetTokenContext(ctx, token), s.showtime.ID, seatIDs)

	s.mu.Lock()
	s.confirming = false
	s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrDraftExists) && !errors.Is(err, ErrSessionClosed) {
			s.log.Error("Failed to create draft booking", zap.Error(err))
		}
		return entity.BookingDraft{}, err
	}
	return draft, nil
}

// BeginPayment hands the draft over to the payment provider.
func (s *Session) BeginPayment(ctx context.Context, provider string) (*entity.Payment, error) {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	token := s.token
	s.mu.Unlock()

	payment, err := s.draft.BeginPayment(utils.SetTokenContext(ctx, token), provider)
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment started",
		zap.String("payment_id", payment.ID),
		zap.String("provider", provider),
	)
	return payment, nil
}

// Close ends the session through the teardown path: live updates and the hold
// timer stop and a pending draft is canceled in the background.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = SessionClosed
		sub := s.sub
		s.sub = nil
		s.mu.Unlock()

		s.cancel()
		s.timer.Stop()
		if sub != nil {
			if err := sub.Close(); err != nil {
				s.log.Warn("Failed to leave showtime group", zap.Error(err))
			}
		}

		s.draft.Teardown()
		s.metrics.ActiveSessions.Dec()
		s.log.Info("Seat selection session closed")
	})
}

// Unload ends the session because the page is going away. The draft cancel
// goes out through the beacon before the session is closed.
func (s *Session) Unload() {
	s.draft.Unload()
	s.Close()
}

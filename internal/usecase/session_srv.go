package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionForbidden   = errors.New("session belongs to another user")
	ErrSeatMapUnavailable = errors.New("seat map unavailable")
)

type SessionService interface {
	Open(ctx context.Context, req *request.CreateSessionRequest) (*response.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (*response.SessionResponse, error)
	ToggleSeat(ctx context.Context, sessionID, seatID string) (*response.ToggleResponse, error)
	Confirm(ctx context.Context, sessionID string) (*response.DraftResponse, error)
	StartPayment(ctx context.Context, sessionID string, req *request.StartPaymentRequest) (*response.PaymentStartResponse, error)
	Close(ctx context.Context, sessionID string) error
	Unload(ctx context.Context, sessionID string) error

	// CloseIdleSessions closes sessions untouched for idleFor and returns how many.
	CloseIdleSessions(idleFor time.Duration) int
	// Shutdown closes every open session.
	Shutdown()
}

type sessionService struct {
	mu       sync.Mutex
	sessions map[string]*reservation.Session

	repo  *repository.Repository
	infra Infra
	cfg   reservation.SessionConfig
	log   *zap.Logger
}

func NewSessionService(repo *repository.Repository, infra Infra, config *utils.Config, log *zap.Logger) SessionService {
	return &sessionService{
		sessions: make(map[string]*reservation.Session),
		repo:     repo,
		infra:    infra,
		cfg: reservation.SessionConfig{
			HoldSeconds:   config.Hold.Seconds,
			CleanupReason: config.Hold.CleanupReason,
			Rules: reservation.RuleConfig{
				CoupleSeatWidth: config.Hold.CoupleSeatWidth,
				MaxSeats:        config.Hold.MaxSeatsPerBooking,
			},
		},
		log: log.With(zap.String("service", "session")),
	}
}

func (s *sessionService) Open(ctx context.Context, req *request.CreateSessionRequest) (*response.SessionResponse, error) {
	token, _ := utils.GetTokenFromContext(ctx)
	showtime := entity.Showtime{ID: req.ShowtimeID, CinemaID: req.CinemaID, RoomID: req.RoomID}

	session := reservation.NewSession(uuid.NewString(), showtime, token, s.cfg, reservation.SessionDeps{
		Seats:      s.repo.Seat,
		Bookings:   s.repo.Booking,
		Payments:   s.repo.Payment,
		Subscriber: s.infra.Subscriber,
		Beacon:     s.infra.Beacon,
		Clock:      s.infra.Clock,
		Metrics:    s.infra.Metrics,
		Log:        s.log,
	})

	// registered before loading so a failed session can still be read and closed
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		if errors.Is(err, reservation.ErrSessionClosed) {
			return nil, err
		}
		return response.SessionToResponse(session.Snapshot()), fmt.Errorf("%w: %v", ErrSeatMapUnavailable, err)
	}

	s.log.Info("Session opened",
		zap.String("session_id", session.ID()),
		zap.String("showtime_id", showtime.ID),
	)
	return response.SessionToResponse(session.Snapshot()), nil
}

// lookup finds a session owned by the caller and refreshes its activity stamp.
func (s *sessionService) lookup(ctx context.Context, sessionID string) (*reservation.Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	token, _ := utils.GetTokenFromContext(ctx)
	if !session.OwnedBy(token) {
		return nil, fmt.Errorf("%w: %s", ErrSessionForbidden, sessionID)
	}
	session.Touch()
	return session, nil
}

// remove unregisters a session owned by the caller. An unload beacon carries
// no Authorization header, so allowAnonymous lets an empty token through.
func (s *sessionService) remove(ctx context.Context, sessionID string, allowAnonymous bool) (*reservation.Session, error) {
	token, ok := utils.GetTokenFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessions[sessionID]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if !(allowAnonymous && !ok) && !session.OwnedBy(token) {
		return nil, fmt.Errorf("%w: %s", ErrSessionForbidden, sessionID)
	}
	delete(s.sessions, sessionID)
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*response.SessionResponse, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return response.SessionToResponse(session.Snapshot()), nil
}

func (s *sessionService) ToggleSeat(ctx context.Context, sessionID, seatID string) (*response.ToggleResponse, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res, err := session.ToggleSeat(seatID)
	if err != nil {
		return nil, fmt.Errorf("toggle seat %s: %w", seatID, err)
	}

	result := "rejected"
	if res.Accepted {
		result = "accepted"
	}
	return &response.ToggleResponse{
		Result:  result,
		Reason:  string(res.Reason),
		Session: response.SessionToResponse(session.Snapshot()),
	}, nil
}

func (s *sessionService) Confirm(ctx context.Context, sessionID string) (*response.DraftResponse, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft, err := session.Confirm(ctx)
	if err != nil {
		return nil, fmt.Errorf("confirm selection: %w", err)
	}

	return &response.DraftResponse{
		ID:     draft.ID,
		Status: draft.Status,
		State:  string(session.Draft().State()),
	}, nil
}

func (s *sessionService) StartPayment(ctx context.Context, sessionID string, req *request.StartPaymentRequest) (*response.PaymentStartResponse, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payment, err := session.BeginPayment(ctx, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("start payment: %w", err)
	}
	return response.PaymentStartToResponse(payment), nil
}

func (s *sessionService) Close(ctx context.Context, sessionID string) error {
	session, err := s.remove(ctx, sessionID, false)
	if err != nil {
		return err
	}
	session.Close()
	return nil
}

func (s *sessionService) Unload(ctx context.Context, sessionID string) error {
	session, err := s.remove(ctx, sessionID, true)
	if err != nil {
		return err
	}
	session.Unload()
	return nil
}

func (s *sessionService) CloseIdleSessions(idleFor time.Duration) int {
	now := s.infra.Clock.Now()

	s.mu.Lock()
	var idle []*reservation.Session
	for id, session := range s.sessions {
		if now.Sub(session.LastSeen()) >= idleFor {
			idle = append(idle, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range idle {
		s.log.Info("Closing idle session", zap.String("session_id", session.ID()))
		session.Close()
	}
	return len(idle)
}

func (s *sessionService) Shutdown() {
	s.mu.Lock()
	all := make([]*reservation.Session, 0, len(s.sessions))
	for id, session := range s.sessions {
		all = append(all, session)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, session := range all {
		session.Close()
	}
	for _, session := range all {
		session.Draft().Wait()
	}
}

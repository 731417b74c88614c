package reservation

import (
	"context"
	"net/http"
	"sync"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/realtime"

	"github.com/stretchr/testify/mock"
)

type mockSeatRepository struct {
	mock.Mock
}

func (m *mockSeatRepository) GetSeatLayout(ctx context.Context, cinemaID, roomID string) (*entity.SeatLayout, error) {
	args := m.Called(ctx, cinemaID, roomID)
	layout, _ := args.Get(0).(*entity.SeatLayout)
	return layout, args.Error(1)
}

func (m *mockSeatRepository) GetLockedSeats(ctx context.Context, showtimeID string) ([]string, error) {
	args := m.Called(ctx, showtimeID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockBookingRepository struct {
	mock.Mock
}

func (m *mockBookingRepository) Create(ctx context.Context, showtimeID string, seatIDs []string) (*entity.Booking, error) {
	args := m.Called(ctx, showtimeID, seatIDs)
	b, _ := args.Get(0).(*entity.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepository) Cancel(ctx context.Context, bookingID, reason string) error {
	args := m.Called(ctx, bookingID, reason)
	return args.Error(0)
}

func (m *mockBookingRepository) FindByID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	args := m.Called(ctx, bookingID)
	b, _ := args.Get(0).(*entity.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepository) CancelRequest(ctx context.Context, bookingID, reason, token string) (*http.Request, error) {
	args := m.Called(ctx, bookingID, reason, token)
	req, _ := args.Get(0).(*http.Request)
	return req, args.Error(1)
}

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, bookingID, provider string) (*entity.Payment, error) {
	args := m.Called(ctx, bookingID, provider)
	p, _ := args.Get(0).(*entity.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*entity.Payment)
	return p, args.Error(1)
}

type mockBeacon struct {
	mock.Mock
}

func (m *mockBeacon) Send(req *http.Request) bool {
	args := m.Called(req)
	return args.Bool(0)
}

// fakeSubscriber captures the handler so tests can push lock events.
type fakeSubscriber struct {
	mu      sync.Mutex
	err     error
	group   string
	handle  realtime.Handler
	closed  int
	started chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{started: make(chan struct{})}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, group string, handle realtime.Handler) (realtime.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.group = group
	f.handle = handle
	close(f.started)
	return fakeSubscription{f}, nil
}

func (f *fakeSubscriber) Close() error { return nil }

func (f *fakeSubscriber) push(ev entity.LockEvent) {
	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()
	handle(ev)
}

func (f *fakeSubscriber) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeSubscription struct {
	f *fakeSubscriber
}

func (s fakeSubscription) Close() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.closed++
	return nil
}

// rowLayout builds a single standard row with seats <label>1..<label>n.
func rowLayout(label string, n int) *entity.SeatLayout {
	row := entity.SeatRow{RowLabel: label}
	for i := 1; i <= n; i++ {
		row.Seats = append(row.Seats, &entity.Seat{
			ID:         seatID(label, i),
			RowLabel:   label,
			SeatNumber: i,
			PositionX:  float64(i - 1),
			SeatType:   entity.SeatTypeStandard,
			IsActive:   true,
		})
	}
	return &entity.SeatLayout{
		Rows:      []entity.SeatRow{row},
		SeatTypes: []entity.SeatTypeColor{{Type: entity.SeatTypeStandard, Color: "#cccccc"}},
	}
}

func seatID(label string, n int) string {
	return (&entity.Seat{RowLabel: label, SeatNumber: n}).Label()
}

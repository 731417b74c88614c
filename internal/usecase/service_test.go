package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/apiclient"
	"cinema-reservation/pkg/metrics"
	"cinema-reservation/pkg/realtime"
	"cinema-reservation/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// fakeBackend is an in-memory booking backend with one row of four seats.
type fakeBackend struct {
	srv *httptest.Server

	layoutStatus  atomic.Int32
	bookingStatus atomic.Value // string
	cancels       atomic.Int32

	mu     sync.Mutex
	tokens []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	b.layoutStatus.Store(http.StatusOK)
	b.bookingStatus.Store("confirmed")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cinemas/{cinema}/rooms/{room}/seat-layout", func(w http.ResponseWriter, r *http.Request) {
		b.recordToken(r)
		if status := int(b.layoutStatus.Load()); status != http.StatusOK {
			writeEnvelope(w, status, nil)
			return
		}
		seats := make([]any, 0, 4)
		for i := 1; i <= 4; i++ {
			seats = append(seats, map[string]any{
				"id": "a" + string(rune('0'+i)), "rowLabel": "A", "seatNumber": i,
				"positionX": i - 1, "seatType": "standard", "isActive": true,
			})
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"rows":      []any{map[string]any{"rowLabel": "A", "seats": seats}},
			"seatTypes": []any{map[string]any{"type": "standard", "color": "#ccc"}},
		})
	})
	mux.HandleFunc("GET /api/showtimes/{id}/locked-seats", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"lockedSeatIds": []string{"a4"}})
	})
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, map[string]any{"id": "bk-1", "status": "pending"})
	})
	mux.HandleFunc("POST /api/bookings/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		b.recordToken(r)
		b.cancels.Add(1)
		writeEnvelope(w, http.StatusOK, nil)
	})
	mux.HandleFunc("GET /api/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"id": r.PathValue("id"), "status": b.bookingStatus.Load().(string), "totalAmountMinor": 9000,
		})
	})
	mux.HandleFunc("POST /api/payments", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, map[string]any{
			"id": "pay-1", "bookingId": "bk-1", "status": "pending", "provider": "stripe",
			"paymentUrl": "https://pay.example/checkout/pay-1",
		})
	})
	mux.HandleFunc("GET /api/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeEnvelope(w, http.StatusNotFound, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"id": r.PathValue("id"), "bookingId": "bk-1", "status": "succeeded",
		})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) recordToken(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = append(b.tokens, r.Header.Get("Authorization"))
}

func (b *fakeBackend) seenTokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.tokens...)
}

func (b *fakeBackend) lastToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tokens) == 0 {
		return ""
	}
	return b.tokens[len(b.tokens)-1]
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": status < 300, "message": http.StatusText(status), "data": data})
}

type testService struct {
	*Service
	backend *fakeBackend
	clock   clockwork.FakeClock
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	backend := newFakeBackend(t)
	client := apiclient.New(apiclient.Config{BaseURL: backend.srv.URL}, zap.NewNop())
	beacon := apiclient.NewBeaconSender(client.HTTPClient(), 4, 0, zap.NewNop())
	t.Cleanup(beacon.Close)

	clock := clockwork.NewFakeClock()
	config := &utils.Config{
		Hold: utils.HoldConfig{Seconds: 600, MaxSeatsPerBooking: 8, CoupleSeatWidth: 1},
		Poll: utils.PollConfig{SuccessMaxAttempts: 2, DefaultMaxAttempts: 1},
	}
	infra := Infra{
		Subscriber: realtime.NopSubscriber{},
		Beacon:     beacon,
		Clock:      clock,
		Metrics:    metrics.NewNop(),
	}

	svc := NewService(repository.NewRepository(client, zap.NewNop()), infra, config, zap.NewNop())
	t.Cleanup(svc.Session.Shutdown)
	return &testService{Service: svc, backend: backend, clock: clock}
}

func authed(token string) context.Context {
	return utils.SetTokenContext(context.Background(), token)
}

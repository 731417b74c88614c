package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/apiclient"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Open(ctx context.Context, req *request.CreateSessionRequest) (*response.SessionResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*response.SessionResponse)
	return res, args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, sessionID string) (*response.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	res, _ := args.Get(0).(*response.SessionResponse)
	return res, args.Error(1)
}

func (m *MockSessionService) ToggleSeat(ctx context.Context, sessionID, seatID string) (*response.ToggleResponse, error) {
	args := m.Called(ctx, sessionID, seatID)
	res, _ := args.Get(0).(*response.ToggleResponse)
	return res, args.Error(1)
}

func (m *MockSessionService) Confirm(ctx context.Context, sessionID string) (*response.DraftResponse, error) {
	args := m.Called(ctx, sessionID)
	res, _ := args.Get(0).(*response.DraftResponse)
	return res, args.Error(1)
}

func (m *MockSessionService) StartPayment(ctx context.Context, sessionID string, req *request.StartPaymentRequest) (*response.PaymentStartResponse, error) {
	args := m.Called(ctx, sessionID, req)
	res, _ := args.Get(0).(*response.PaymentStartResponse)
	return res, args.Error(1)
}

func (m *MockSessionService) Close(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockSessionService) Unload(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockSessionService) CloseIdleSessions(idleFor time.Duration) int {
	return m.Called(idleFor).Int(0)
}

func (m *MockSessionService) Shutdown() {
	m.Called()
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Status(ctx context.Context, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*response.PaymentStatusResponse)
	return res, args.Error(1)
}

func newTestRouter(sessions *MockSessionService, payments *MockPaymentService) http.Handler {
	h := NewHandler(&usecase.Service{Session: sessions, Payment: payments}, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/sessions", h.Session.Open)
	r.Get("/api/sessions/{id}", h.Session.Get)
	r.Post("/api/sessions/{id}/seats/{seatId}/toggle", h.Session.ToggleSeat)
	r.Post("/api/sessions/{id}/confirm", h.Session.Confirm)
	r.Post("/api/sessions/{id}/payment", h.Session.StartPayment)
	r.Delete("/api/sessions/{id}", h.Session.Close)
	r.Post("/api/sessions/{id}/unload", h.Session.Unload)
	r.Get("/api/payments/{id}/status", h.Payment.Status)
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var res utils.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec, res
}

func TestSessionHandler_Open(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	want := &request.CreateSessionRequest{ShowtimeID: "st-1", CinemaID: "c1", RoomID: "r1"}
	sessions.On("Open", mock.Anything, want).
		Return(&response.SessionResponse{SessionID: "s-1", State: "ready"}, nil).Once()

	rec, res := serve(t, h, http.MethodPost, "/api/sessions", `{"showtime_id":"st-1","cinema_id":"c1","room_id":"r1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, res.Status)
	assert.Equal(t, "s-1", res.Data.(map[string]any)["session_id"])
	sessions.AssertExpectations(t)
}

func TestSessionHandler_Open_Invalid(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	rec, _ := serve(t, h, http.MethodPost, "/api/sessions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, res := serve(t, h, http.MethodPost, "/api/sessions", `{"showtime_id":"st-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Contains(t, res.Errors, "CinemaID")

	sessions.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestSessionHandler_Open_SeatMapUnavailable(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	sessions.On("Open", mock.Anything, mock.Anything).
		Return(&response.SessionResponse{SessionID: "s-1", State: "failed"}, fmt.Errorf("%w: boom", usecase.ErrSeatMapUnavailable))

	rec, res := serve(t, h, http.MethodPost, "/api/sessions", `{"showtime_id":"st-1","cinema_id":"c1","room_id":"r1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, res.Status)
	assert.Equal(t, "failed", res.Data.(map[string]any)["state"])
}

func TestSessionHandler_ToggleSeat(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	sessions.On("ToggleSeat", mock.Anything, "s-1", "a4").
		Return(&response.ToggleResponse{Result: "rejected", Reason: "locked"}, nil)

	rec, res := serve(t, h, http.MethodPost, "/api/sessions/s-1/seats/a4/toggle", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := res.Data.(map[string]any)
	assert.Equal(t, "rejected", data["result"])
	assert.Equal(t, "locked", data["reason"])
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unknown session", fmt.Errorf("%w: s-1", usecase.ErrSessionNotFound), http.StatusNotFound, "Session not found"},
		{"closed session", reservation.ErrSessionClosed, http.StatusNotFound, "Session not found"},
		{"foreign session", fmt.Errorf("%w: s-1", usecase.ErrSessionForbidden), http.StatusForbidden, "Session belongs to another user"},
		{"not ready", reservation.ErrSessionNotReady, http.StatusConflict, "Seat map is not ready"},
		{"empty selection", fmt.Errorf("confirm selection: %w", reservation.ErrEmptySelection), http.StatusBadRequest, "Select at least one seat"},
		{"gap", fmt.Errorf("confirm selection: %w", reservation.ErrSelectionGap), http.StatusConflict, "Selection leaves a single seat empty"},
		{"hold expired", reservation.ErrHoldExpired, http.StatusConflict, "Seat hold has expired"},
		{"in flight", reservation.ErrConfirmInFlight, http.StatusConflict, "Booking is already being created"},
		{"draft exists", reservation.ErrDraftExists, http.StatusConflict, "Booking is already being created"},
		{"breaker open", apiclient.ErrBackendUnavailable, http.StatusBadGateway, "Booking service unavailable"},
		{"backend conflict", &apiclient.APIError{StatusCode: http.StatusConflict, Message: "Seat A1 already booked"}, http.StatusConflict, "Seat A1 already booked"},
		{"backend 500", &apiclient.APIError{StatusCode: http.StatusInternalServerError, Message: "db down"}, http.StatusBadGateway, "Booking service error"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionService)
			h := newTestRouter(sessions, new(MockPaymentService))
			sessions.On("Confirm", mock.Anything, "s-1").Return(nil, tt.err)

			rec, res := serve(t, h, http.MethodPost, "/api/sessions/s-1/confirm", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, res.Status)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}
}

func TestSessionHandler_StartPayment(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	sessions.On("StartPayment", mock.Anything, "s-1", &request.StartPaymentRequest{Provider: "stripe"}).
		Return(&response.PaymentStartResponse{PaymentID: "pay-1", PaymentURL: "https://pay.example"}, nil)

	rec, res := serve(t, h, http.MethodPost, "/api/sessions/s-1/payment", `{"provider":"stripe"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "https://pay.example", res.Data.(map[string]any)["payment_url"])

	rec, _ = serve(t, h, http.MethodPost, "/api/sessions/s-1/payment", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_CloseAndUnload(t *testing.T) {
	sessions := new(MockSessionService)
	h := newTestRouter(sessions, new(MockPaymentService))

	sessions.On("Close", mock.Anything, "s-1").Return(nil)
	sessions.On("Close", mock.Anything, "gone").Return(usecase.ErrSessionNotFound)
	sessions.On("Unload", mock.Anything, "gone").Return(usecase.ErrSessionNotFound)

	rec, _ := serve(t, h, http.MethodDelete, "/api/sessions/s-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, h, http.MethodDelete, "/api/sessions/gone", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unload never fails towards the browser
	rec, _ = serve(t, h, http.MethodPost, "/api/sessions/gone/unload", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestPaymentHandler_Status(t *testing.T) {
	payments := new(MockPaymentService)
	h := newTestRouter(new(MockSessionService), payments)

	want := &request.PaymentStatusRequest{PaymentID: "pay-1", Outcome: "success", BookingID: "bk-1"}
	payments.On("Status", mock.Anything, want).
		Return(&response.PaymentStatusResponse{PaymentID: "pay-1", PollState: "stable"}, nil)

	rec, res := serve(t, h, http.MethodGet, "/api/payments/pay-1/status?outcome=success&booking_id=bk-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stable", res.Data.(map[string]any)["poll_state"])
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Status_InvalidOutcome(t *testing.T) {
	payments := new(MockPaymentService)
	h := newTestRouter(new(MockSessionService), payments)

	rec, res := serve(t, h, http.MethodGet, "/api/payments/pay-1/status?outcome=maybe", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, res.Errors, "Outcome")
	payments.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

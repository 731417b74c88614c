package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SessionHandler struct {
	service usecase.SessionService
	log     *zap.Logger
}

func NewSessionHandler(service usecase.SessionService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With(zap.String("handler", "session")),
	}
}

// Open handles POST /api/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	session, err := h.service.Open(r.Context(), &req)
	if err != nil {
		if session != nil && errors.Is(err, usecase.ErrSeatMapUnavailable) {
			// the failed session is still returned so the page can show its error state
			h.log.Error("open session failed - seat map unavailable", zap.Error(err))
			utils.ResponseJSON(w, http.StatusBadGateway, false, "Seat map could not be loaded", session, nil)
			return
		}
		handleServiceError(h.log, w, err, "open session")
		return
	}

	utils.ResponseCreated(w, "success", session)
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	session, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		handleServiceError(h.log, w, err, "get session")
		return
	}

	utils.ResponseSuccess(w, "success", session)
}

// ToggleSeat handles POST /api/sessions/{id}/seats/{seatId}/toggle.
// A rejected toggle is still a 200; the reason is in the body.
func (h *SessionHandler) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	seatID := chi.URLParam(r, "seatId")

	res, err := h.service.ToggleSeat(r.Context(), sessionID, seatID)
	if err != nil {
		handleServiceError(h.log, w, err, "toggle seat")
		return
	}

	utils.ResponseSuccess(w, "success", res)
}

// Confirm handles POST /api/sessions/{id}/confirm
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	draft, err := h.service.Confirm(r.Context(), sessionID)
	if err != nil {
		handleServiceError(h.log, w, err, "confirm selection")
		return
	}

	utils.ResponseCreated(w, "success", draft)
}

// StartPayment handles POST /api/sessions/{id}/payment
func (h *SessionHandler) StartPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req request.StartPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.StartPayment(r.Context(), sessionID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "start payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// Close handles DELETE /api/sessions/{id}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := h.service.Close(r.Context(), sessionID); err != nil {
		handleServiceError(h.log, w, err, "close session")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// Unload handles POST /api/sessions/{id}/unload. The page is already gone, so
// the answer is always 202.
func (h *SessionHandler) Unload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := h.service.Unload(r.Context(), sessionID); err != nil {
		h.log.Debug("Unload for unknown session", zap.String("session_id", sessionID), zap.Error(err))
	}

	utils.ResponseAccepted(w, "accepted")
}

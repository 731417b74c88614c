package adaptor

import (
	"errors"
	"net/http"

	"cinema-reservation/internal/reservation"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/apiclient"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Session *SessionHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Session: NewSessionHandler(service.Session, log),
		Payment: NewPaymentHandler(service.Payment, log),
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, reservation.ErrSessionClosed):
		log.Warn(operation+" failed - session not found", zap.Error(err))
		utils.ResponseNotFound(w, "Session not found")

	case errors.Is(err, usecase.ErrSessionForbidden):
		log.Warn(operation+" failed - session owned by another token", zap.Error(err))
		utils.ResponseForbidden(w, "Session belongs to another user")

	case errors.Is(err, reservation.ErrSeatNotFound):
		log.Warn(operation+" failed - seat not found", zap.Error(err))
		utils.ResponseNotFound(w, "Seat not found")

	case errors.Is(err, reservation.ErrSessionNotReady):
		log.Warn(operation+" failed - session not ready", zap.Error(err))
		utils.ResponseConflict(w, "Seat map is not ready")

	case errors.Is(err, reservation.ErrEmptySelection):
		log.Warn(operation+" failed - empty selection", zap.Error(err))
		utils.ResponseBadRequest(w, "Select at least one seat", nil)

	case errors.Is(err, reservation.ErrSelectionGap):
		log.Warn(operation+" failed - selection leaves a gap", zap.Error(err))
		utils.ResponseConflict(w, "Selection leaves a single seat empty")

	case errors.Is(err, reservation.ErrHoldExpired):
		log.Warn(operation+" failed - hold expired", zap.Error(err))
		utils.ResponseConflict(w, "Seat hold has expired")

	case errors.Is(err, reservation.ErrConfirmInFlight),
		errors.Is(err, reservation.ErrDraftExists):
		log.Warn(operation+" failed - booking already in progress", zap.Error(err))
		utils.ResponseConflict(w, "Booking is already being created")

	case errors.Is(err, reservation.ErrNoDraft),
		errors.Is(err, reservation.ErrDraftNotPending):
		log.Warn(operation+" failed - no pending booking", zap.Error(err))
		utils.ResponseConflict(w, "No pending booking to pay for")

	case errors.Is(err, apiclient.ErrBackendUnavailable),
		errors.Is(err, usecase.ErrSeatMapUnavailable):
		log.Error(operation+" failed - backend unavailable", zap.Error(err))
		utils.ResponseBadGateway(w, "Booking service unavailable")

	case errors.As(err, &apiErr) && apiclient.IsClientError(err):
		// backend rejections (seat taken, token expired) are passed through as-is
		log.Warn(operation+" rejected by backend",
			zap.Int("status", apiErr.StatusCode),
			zap.Error(err))
		utils.ResponseJSON(w, apiErr.StatusCode, false, apiErr.Message, nil, apiErr.Errors)

	case errors.As(err, &apiErr):
		log.Error(operation+" failed - backend error", zap.Error(err))
		utils.ResponseBadGateway(w, "Booking service error")

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

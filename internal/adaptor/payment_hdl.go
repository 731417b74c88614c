package adaptor

import (
	"context"
	"errors"
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Status handles GET /api/payments/{id}/status?outcome=&booking_id=
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.PaymentStatusRequest{
		PaymentID: chi.URLParam(r, "id"),
		Outcome:   query.Get("outcome"),
		BookingID: query.Get("booking_id"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	status, err := h.service.Status(r.Context(), &req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// client went away, nobody is listening
			h.log.Debug("Payment status poll abandoned", zap.String("payment_id", req.PaymentID))
			return
		}
		handleServiceError(h.log, w, err, "payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken(log))

		// GET /api/payments/{id}/status - landing page after the provider redirect
		r.Get("/api/payments/{id}/status", paymentHandler.Status)
	})
}

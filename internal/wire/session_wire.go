package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSession(r chi.Router, sessionHandler *adaptor.SessionHandler, log *zap.Logger) {
	r.Route("/api/sessions", func(r chi.Router) {
		// POST /api/sessions/{id}/unload - sent with navigator.sendBeacon while the tab
		// closes; beacons carry no headers, the session's stored token is used instead
		r.With(middleware.OptionalBearerToken).Post("/{id}/unload", sessionHandler.Unload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerToken(log))

			// POST /api/sessions - open the seat page for a showtime
			r.Post("/", sessionHandler.Open)

			r.Get("/{id}", sessionHandler.Get)
			r.Delete("/{id}", sessionHandler.Close)
			r.Post("/{id}/seats/{seatId}/toggle", sessionHandler.ToggleSeat)
			r.Post("/{id}/confirm", sessionHandler.Confirm)
			r.Post("/{id}/payment", sessionHandler.StartPayment)
		})
	})
}

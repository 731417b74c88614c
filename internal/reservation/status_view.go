package reservation

import (
	"errors"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apiclient"
)

type StatusAction struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	Primary bool   `json:"primary"`
}

// StatusView is what the payment result page renders.
type StatusView struct {
	Title       string         `json:"title"`
	Icon        string         `json:"icon"`
	Tone        string         `json:"tone"`
	Description string         `json:"description"`
	Actions     []StatusAction `json:"actions"`
}

var (
	actionHome       = StatusAction{Label: "Back to home", Action: "home"}
	actionBookings   = StatusAction{Label: "My bookings", Action: "bookings"}
	actionTicket     = StatusAction{Label: "View ticket", Action: "view_ticket", Primary: true}
	actionRefresh    = StatusAction{Label: "Refresh status", Action: "refresh", Primary: true}
	actionRetryPay   = StatusAction{Label: "Try payment again", Action: "retry_payment", Primary: true}
	actionPickSeats  = StatusAction{Label: "Choose seats again", Action: "select_seats", Primary: true}
	actionRetryCheck = StatusAction{Label: "Try again", Action: "refresh", Primary: true}
)

// BuildStatusView derives the page model from the poll result. The booking
// status wins over the provider's outcome tag once the backend has settled.
func BuildStatusView(res PollResult) StatusView {
	switch res.State {
	case PollNotFound:
		return StatusView{
			Title:       "Payment not found",
			Icon:        "search",
			Tone:        "neutral",
			Description: "We could not find this payment. If you were charged, it will show up in your bookings shortly.",
			Actions:     []StatusAction{actionBookings, actionHome},
		}
	case PollFailed:
		desc := "We could not load the payment status right now."
		var apiErr *apiclient.APIError
		if errors.As(res.Err, &apiErr) && apiErr.Message != "" {
			desc = apiErr.Message
		}
		return StatusView{
			Title:       "Could not check payment",
			Icon:        "alert-triangle",
			Tone:        "error",
			Description: desc,
			Actions:     []StatusAction{actionRetryCheck, actionBookings},
		}
	}

	if res.Booking != nil {
		switch res.Booking.Status {
		case entity.BookingStatusConfirmed:
			return StatusView{
				Title:       "Payment successful",
				Icon:        "check-circle",
				Tone:        "success",
				Description: "Your booking is confirmed. Your tickets are ready.",
				Actions:     []StatusAction{actionTicket, actionHome},
			}
		case entity.BookingStatusCanceled:
			return StatusView{
				Title:       "Booking canceled",
				Icon:        "x-circle",
				Tone:        "error",
				Description: "This booking was canceled and the seats were released.",
				Actions:     []StatusAction{actionPickSeats, actionHome},
			}
		case entity.BookingStatusExpired:
			return StatusView{
				Title:       "Booking expired",
				Icon:        "clock",
				Tone:        "error",
				Description: "The seat hold ran out before the payment was completed.",
				Actions:     []StatusAction{actionPickSeats, actionHome},
			}
		case entity.BookingStatusRefunding:
			return StatusView{
				Title:       "Refund in progress",
				Icon:        "rotate-ccw",
				Tone:        "warning",
				Description: "Your refund is being processed.",
				Actions:     []StatusAction{actionBookings, actionHome},
			}
		case entity.BookingStatusRefunded:
			return StatusView{
				Title:       "Payment refunded",
				Icon:        "rotate-ccw",
				Tone:        "neutral",
				Description: "The payment for this booking was refunded.",
				Actions:     []StatusAction{actionBookings, actionHome},
			}
		}
	}

	if paymentFailed(res) {
		return StatusView{
			Title:       "Payment failed",
			Icon:        "x-circle",
			Tone:        "error",
			Description: "The payment was not completed. Your booking stays on hold until it expires.",
			Actions:     []StatusAction{actionRetryPay, actionBookings},
		}
	}

	return StatusView{
		Title:       "Payment processing",
		Icon:        "loader",
		Tone:        "warning",
		Description: "We are still confirming your payment. This can take a few minutes.",
		Actions:     []StatusAction{actionRefresh, actionBookings},
	}
}

func paymentFailed(res PollResult) bool {
	if res.Outcome == entity.PaymentOutcomeFailed {
		return true
	}
	if res.Payment == nil {
		return false
	}
	return res.Payment.Status == entity.PaymentStatusFailed || res.Payment.Status == entity.PaymentStatusCanceled
}

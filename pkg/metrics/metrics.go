package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for the seat-reservation flow.
type Metrics struct {
	// Lock events merged into a session view (action: lock, unlock, booked, extend, unknown)
	LockEventsTotal *prometheus.CounterVec

	// Seat toggle intents (result: accepted, rejected; reason set for rejections)
	SeatTogglesTotal *prometheus.CounterVec

	HoldExpirationsTotal prometheus.Counter

	// Draft booking creations (status: created, failed)
	DraftsCreatedTotal *prometheus.CounterVec

	// Draft cleanups (trigger: teardown, unload; result: sent, queued, failed, dropped)
	DraftCleanupsTotal *prometheus.CounterVec

	// Booking fetches issued while polling payment status
	PollFetchesTotal prometheus.Counter

	// Poll sessions by terminal state (stable, gave_up, not_found, failed, abandoned)
	PollResultsTotal *prometheus.CounterVec

	ActiveSessions prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LockEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_lock_events_total",
				Help: "Real-time seat lock events merged into session views",
			},
			[]string{"action"},
		),
		SeatTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_toggles_total",
				Help: "Seat toggle intents by result",
			},
			[]string{"result", "reason"},
		),
		HoldExpirationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seat_hold_expirations_total",
				Help: "Hold windows that ran out",
			},
		),
		DraftsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_drafts_created_total",
				Help: "Draft booking creation attempts",
			},
			[]string{"status"},
		),
		DraftCleanupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_draft_cleanups_total",
				Help: "Draft cancellations fired on teardown or unload",
			},
			[]string{"trigger", "result"},
		),
		PollFetchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_status_poll_fetches_total",
				Help: "Booking fetches issued while polling payment status",
			},
		),
		PollResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_status_poll_results_total",
				Help: "Payment status poll sessions by terminal state",
			},
			[]string{"state", "outcome"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "seat_selection_sessions_active",
				Help: "Open seat selection sessions",
			},
		),
	}

	reg.MustRegister(
		m.LockEventsTotal,
		m.SeatTogglesTotal,
		m.HoldExpirationsTotal,
		m.DraftsCreatedTotal,
		m.DraftCleanupsTotal,
		m.PollFetchesTotal,
		m.PollResultsTotal,
		m.ActiveSessions,
	)

	return m
}

// NewNop returns collectors registered nowhere, for tests and tools.
func NewNop() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

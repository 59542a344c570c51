package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poputka",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poputka",
			Name:      "bookings_created_total",
			Help:      "Successfully created bookings.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poputka",
			Name:      "bookings_cancelled_total",
			Help:      "Cancelled bookings.",
		},
	)

	seatConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poputka",
			Name:      "seat_conflicts_total",
			Help:      "Booking attempts that lost the optimistic seat race.",
		},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poputka",
			Name:      "bot_updates_total",
			Help:      "Processed Telegram updates by kind.",
		},
		[]string{"kind"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingsCancelled, seatConflicts, botUpdates)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() { bookingsCreated.Inc() }

func IncBookingCancelled() { bookingsCancelled.Inc() }

func IncSeatConflict() { seatConflicts.Inc() }

// IncBotUpdate counts a processed update, kind is "message" or "callback".
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}

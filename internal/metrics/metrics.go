package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yos_rentals",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yos_rentals",
			Name:      "booking_transitions_total",
			Help:      "Booking state-machine transitions by target status and outcome.",
		},
		[]string{"to_status", "outcome"},
	)

	paymentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yos_rentals",
			Name:      "payments_total",
			Help:      "Payments applied by method.",
		},
		[]string{"method"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yos_rentals",
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and status.",
		},
		[]string{"channel", "status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, paymentsApplied, notifications)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncTransition counts a state-machine transition attempt.
func IncTransition(toStatus, outcome string) {
	bookingTransitions.WithLabelValues(toStatus, outcome).Inc()
}

// IncPayment counts an applied payment.
func IncPayment(method string) {
	paymentsApplied.WithLabelValues(method).Inc()
}

// IncNotification counts a delivery attempt outcome.
func IncNotification(channel, status string) {
	notifications.WithLabelValues(channel, status).Inc()
}

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lingua"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	contactsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contacts",
			Name:      "recorded_total",
			Help:      "Contacts recorded, split by whether the pair was new.",
		},
		[]string{"new"},
	)

	ratingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratings",
			Name:      "transitions_total",
			Help:      "Rating state transitions per (from, to) pair.",
		},
		[]string{"from", "to"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Push notifications dispatched, split by outcome.",
		},
		[]string{"success"},
	)

	pictureLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile_pictures",
			Name:      "lookups_total",
			Help:      "Profile picture lookups, split by cache result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		contactsRecorded,
		ratingTransitions,
		notificationsSent,
		pictureLookups,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request as in flight and returns the matching completion func.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one finished HTTP request.
func RecordHTTPRequest(method, path string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordContact counts a recorded contact.
func RecordContact(isNew bool) {
	contactsRecorded.WithLabelValues(strconv.FormatBool(isNew)).Inc()
}

// RecordRatingTransition counts a rating state transition.
func RecordRatingTransition(from, to string) {
	ratingTransitions.WithLabelValues(from, to).Inc()
}

// RecordNotification counts a dispatched notification.
func RecordNotification(success bool) {
	notificationsSent.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordPictureLookup counts a profile picture lookup ("hit", "miss", "error").
func RecordPictureLookup(result string) {
	pictureLookups.WithLabelValues(result).Inc()
}

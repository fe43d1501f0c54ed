package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce                   sync.Once
	apiRequestsTotal               *prometheus.CounterVec
	apiLatencySeconds              *prometheus.HistogramVec
	apiErrorsTotal                 *prometheus.CounterVec
	fanoutEventsTotal              *prometheus.CounterVec
	fanoutDurationSeconds          *prometheus.HistogramVec
	studentAssignmentsCreatedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the assignment fan-out pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		fanoutEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fanout_events_total",
			Help: "Total number of assignment fan-out events handled, by outcome.",
		}, []string{"event", "outcome"})

		fanoutDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fanout_duration_seconds",
			Help:    "Duration of assignment fan-out event handling.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"event"})

		studentAssignmentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "student_assignments_created_total",
			Help: "Total number of student assignment rows created by fan-out.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			fanoutEventsTotal,
			fanoutDurationSeconds,
			studentAssignmentsCreatedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// FanoutEvents exposes the per-event outcome counter.
func FanoutEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return fanoutEventsTotal
}

// FanoutDuration exposes the fan-out handling histogram.
func FanoutDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return fanoutDurationSeconds
}

// StudentAssignmentsCreated exposes the created-rows counter.
func StudentAssignmentsCreated() prometheus.Counter {
	RegisterMetrics()
	return studentAssignmentsCreatedTotal
}

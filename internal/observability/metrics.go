package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	apiRequestsTotal          *prometheus.CounterVec
	apiLatencySeconds         *prometheus.HistogramVec
	apiErrorsTotal            *prometheus.CounterVec
	scoresRecordedTotal       *prometheus.CounterVec
	scoreConflictsTotal       prometheus.Counter
	bookingConflictsTotal     prometheus.Counter
	rankingsServedTotal       *prometheus.CounterVec
	aggregateRecomputeSeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
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
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		scoresRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scores_recorded_total",
			Help: "Total number of score records written, by operation.",
		}, []string{"operation"})

		scoreConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "score_conflicts_total",
			Help: "Total number of duplicate score submissions rejected.",
		})

		bookingConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Total number of slot booking attempts rejected as conflicts.",
		})

		rankingsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankings_served_total",
			Help: "Total number of rankings served, by mode and source.",
		}, []string{"mode", "source"})

		aggregateRecomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aggregate_recompute_seconds",
			Help:    "Latency distribution for aggregate recomputation.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			scoresRecordedTotal,
			scoreConflictsTotal,
			bookingConflictsTotal,
			rankingsServedTotal,
			aggregateRecomputeSeconds,
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

// ScoresRecorded exposes the counter for written score records.
func ScoresRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return scoresRecordedTotal
}

// ScoreConflicts exposes the counter for rejected duplicate scores.
func ScoreConflicts() prometheus.Counter {
	RegisterMetrics()
	return scoreConflictsTotal
}

// BookingConflicts exposes the counter for rejected slot bookings.
func BookingConflicts() prometheus.Counter {
	RegisterMetrics()
	return bookingConflictsTotal
}

// RankingsServed exposes the counter for served rankings.
func RankingsServed() *prometheus.CounterVec {
	RegisterMetrics()
	return rankingsServedTotal
}

// AggregateRecomputeSeconds exposes the recompute latency histogram.
func AggregateRecomputeSeconds() prometheus.Histogram {
	RegisterMetrics()
	return aggregateRecomputeSeconds
}

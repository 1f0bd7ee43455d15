package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cycle metrics
	CycleExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmradar_cycle_executions_total",
			Help: "Total number of analysis cycles",
		},
		[]string{"symbol", "trigger", "status"}, // trigger: command|session, status: success|error
	)

	CycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmradar_cycle_duration_seconds",
			Help:    "Analysis cycle duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"symbol"},
	)

	// Source metrics
	SourceCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmradar_source_calls_total",
			Help: "Total number of external source calls",
		},
		[]string{"source", "feed", "status"}, // status: success|error
	)

	SourceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmradar_source_latency_seconds",
			Help:    "External source latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"source", "feed"},
	)

	// Disclosure aggregation
	SynthesizedFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mmradar_disclosure_synthesized_total",
			Help: "Times the disclosure fallback set was synthesized",
		},
	)

	// Notification delivery
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmradar_notifications_total",
			Help: "Total notification delivery attempts",
		},
		[]string{"status"}, // status: sent|dropped
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmradar_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmradar_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)
)

func init() {
	prometheus.MustRegister(
		CycleExecutions,
		CycleDuration,
		SourceCalls,
		SourceLatency,
		SynthesizedFallbacks,
		NotificationsSent,
		WorkerExecutions,
		WorkerDuration,
	)
}

// ObserveSourceCall records outcome and latency of one source call
func ObserveSourceCall(source, feed string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SourceCalls.WithLabelValues(source, feed, status).Inc()
	SourceLatency.WithLabelValues(source, feed).Observe(time.Since(start).Seconds())
}

// ObserveCycle records outcome and duration of one analysis cycle
func ObserveCycle(symbol, trigger string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CycleExecutions.WithLabelValues(symbol, trigger, status).Inc()
	CycleDuration.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

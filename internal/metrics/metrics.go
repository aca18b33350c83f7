package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts calls to the telemetry backend by endpoint and outcome.
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ozondash_backend_requests_total",
			Help: "Total number of requests sent to the telemetry backend",
		},
		[]string{"endpoint", "status"},
	)

	// BackendDuration tracks backend request latency.
	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ozondash_backend_request_duration_seconds",
			Help:    "Telemetry backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// SupersededAggregations counts aggregations discarded because a newer
	// selection arrived for the same viewer.
	SupersededAggregations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ozondash_superseded_aggregations_total",
			Help: "Total number of aggregations discarded as stale",
		},
	)

	// AggregatedDevices tracks how many devices the last aggregation fanned out to.
	AggregatedDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ozondash_aggregated_devices",
			Help: "Number of devices included in the most recent aggregation",
		},
	)

	// DirectoryRefreshes counts directory refreshes by outcome.
	DirectoryRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ozondash_directory_refreshes_total",
			Help: "Total number of device directory refreshes",
		},
		[]string{"status"},
	)
)

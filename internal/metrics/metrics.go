// Package metrics provides Prometheus metrics for the service.
// Collectors are package-level so they register exactly once per process
// no matter how many routers or engines are constructed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts search queries by index and outcome.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algolite_searches_total",
			Help: "Total number of search queries",
		},
		[]string{"index", "status"},
	)

	// SearchDuration tracks search latency by index.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "algolite_search_duration_seconds",
			Help:    "Duration of search queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index"},
	)

	// RecordWritesTotal counts record mutations by index and operation.
	RecordWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algolite_record_writes_total",
			Help: "Total number of record write operations",
		},
		[]string{"index", "operation"},
	)

	// HTTPRequestsTotal counts handled HTTP requests by method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algolite_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
)

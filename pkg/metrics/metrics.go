package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Key metrics
	KeysGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_generated_total",
			Help: "Total number of keys generated",
		},
		[]string{"kind"}, // "route" or "tx"
	)

	KeyParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_parse_errors_total",
			Help: "Total number of keys or base62 strings that failed to parse",
		},
		[]string{"operation"}, // "route", "timestamp", "decode"
	)

	RouteAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_route_assignments_total",
			Help: "Records stored per route",
		},
		[]string{"route"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "l1" or "l2"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	FilterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_keys_filter_rejections_total",
			Help: "Record lookups answered as not found by the key filter",
		},
	)

	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "domain_keys_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_keys_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "route", "status"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "domain_keys_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

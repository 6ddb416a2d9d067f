package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts served requests by route pattern and status code
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habyx",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "habyx",
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WSConnections is the number of open websocket clients
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "habyx",
			Name:      "ws_connections",
			Help:      "Number of connected websocket clients",
		},
	)

	// EventsPublished counts domain events handed to the broker
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habyx",
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		},
		[]string{"routing_key", "result"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habyx",
			Name:      "cache_lookups_total",
			Help:      "Listing cache lookups by outcome",
		},
		[]string{"result"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(HTTPRequests)
		prometheus.DefaultRegisterer.Register(HTTPDuration)
		prometheus.DefaultRegisterer.Register(WSConnections)
		prometheus.DefaultRegisterer.Register(EventsPublished)
		prometheus.DefaultRegisterer.Register(CacheLookups)
	})
}

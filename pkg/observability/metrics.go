package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Bus request/reply metrics
	BusRequestsTotal   *prometheus.CounterVec
	BusRequestDuration *prometheus.HistogramVec

	// Event metrics
	EventsPublishedTotal *prometheus.CounterVec
	SyncEventsTotal      *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		BusRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgservice_bus_requests_total",
				Help: "Total number of bus requests handled",
			},
			[]string{"subject", "status"},
		),
		BusRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orgservice_bus_request_duration_seconds",
				Help:    "Bus request handling duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"subject"},
		),

		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgservice_events_published_total",
				Help: "Total number of domain events published",
			},
			[]string{"event_type", "status"},
		),
		SyncEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgservice_sync_events_total",
				Help: "Total number of inbound module reconciliation events",
			},
			[]string{"kind"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orgservice_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orgservice_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.BusRequestsTotal,
		m.BusRequestDuration,
		m.EventsPublishedTotal,
		m.SyncEventsTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// ObserveBusRequest records a handled bus request.
func (m *Metrics) ObserveBusRequest(subject, status string, duration time.Duration) {
	m.BusRequestsTotal.WithLabelValues(subject, status).Inc()
	m.BusRequestDuration.WithLabelValues(subject).Observe(duration.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisLatency    *prometheus.HistogramVec

	// Geocoder metrics
	GeocodeRequests *prometheus.CounterVec
	GeocodeLatency  prometheus.Histogram

	// Audit metrics
	AuditEventsPurged prometheus.Counter
}

// NewMetrics creates all application metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of store operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		RedisOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
		RedisLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"operation"}),

		GeocodeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocoder",
			Name:      "requests_total",
			Help:      "Geocoding lookups by outcome",
		}, []string{"outcome"}),
		GeocodeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "geocoder",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream geocoding calls",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}),

		AuditEventsPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "events_purged_total",
			Help:      "Audit events removed by the retention worker",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveDB records one store operation that started at start.
func (m *Metrics) ObserveDB(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.DatabaseOperations.WithLabelValues(op, status(err)).Inc()
	m.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveRedis records one Redis command that started at start.
func (m *Metrics) ObserveRedis(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.RedisOperations.WithLabelValues(op, status(err)).Inc()
	m.RedisLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveGeocode counts a lookup by outcome (hit, ok, not_found, error,
// open). Upstream latency is recorded only when start is not zero.
func (m *Metrics) ObserveGeocode(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.GeocodeRequests.WithLabelValues(outcome).Inc()
	if !start.IsZero() {
		m.GeocodeLatency.Observe(time.Since(start).Seconds())
	}
}

// AuditPurged adds n purged audit events.
func (m *Metrics) AuditPurged(n int64) {
	if m == nil {
		return
	}
	m.AuditEventsPurged.Add(float64(n))
}

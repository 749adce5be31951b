package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion service.
type Metrics struct {
	ObservationsStored prometheus.Counter
	IngestOutcomes     *prometheus.CounterVec // labels: outcome={success,skipped,failed}
	IngestDuration     prometheus.Histogram
	SchedulerRunning   prometheus.Gauge

	// Marine data client metrics.
	FetchRequests *prometheus.CounterVec // labels: origin={stormglass,synthetic}, outcome={success,error}
	FetchDuration prometheus.Histogram

	// Cache metrics.
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}
	CacheFallbacks prometheus.Counter

	// Notification metrics.
	NotificationsSent    prometheus.Counter
	EmailFailures        prometheus.Counter
	AlertPublishFailures prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ObservationsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "observations_stored_total",
			Help:      "Total weather observations appended to the store.",
		}),
		IngestOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "ingest_outcomes_total",
			Help:      "Per-site ingestion attempts by outcome.",
		}, []string{"outcome"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beach_ingest",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete single-site ingestion.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "beach_ingest",
			Name:      "scheduler_running",
			Help:      "1 when the ingestion scheduler is active, 0 when shut down.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "fetch_requests_total",
			Help:      "Marine data fetches by origin and outcome.",
		}, []string{"origin", "outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beach_ingest",
			Name:      "fetch_duration_seconds",
			Help:      "Stormglass API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "cache_lookups_total",
			Help:      "Marine data cache lookups by result.",
		}, []string{"result"}),
		CacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "cache_fallbacks_total",
			Help:      "Cache calls served by the in-process store after a Redis failure.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "notifications_sent_total",
			Help:      "Safety notifications persisted for nearby users.",
		}),
		EmailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "email_failures_total",
			Help:      "Alert email deliveries that failed.",
		}),
		AlertPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beach_ingest",
			Name:      "alert_publish_failures_total",
			Help:      "Alert events that could not be published to Kafka.",
		}),
	}

	prometheus.MustRegister(
		m.ObservationsStored,
		m.IngestOutcomes,
		m.IngestDuration,
		m.SchedulerRunning,
		m.FetchRequests,
		m.FetchDuration,
		m.CacheLookups,
		m.CacheFallbacks,
		m.NotificationsSent,
		m.EmailFailures,
		m.AlertPublishFailures,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ObservationsStored:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "observations_stored_total"}),
		IngestOutcomes:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "ingest_outcomes_total"}, []string{"outcome"}),
		IngestDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "beach_ingest", Name: "ingest_duration_seconds"}),
		SchedulerRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "beach_ingest", Name: "scheduler_running"}),
		FetchRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "fetch_requests_total"}, []string{"origin", "outcome"}),
		FetchDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "beach_ingest", Name: "fetch_duration_seconds"}),
		CacheLookups:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "cache_lookups_total"}, []string{"result"}),
		CacheFallbacks:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "cache_fallbacks_total"}),
		NotificationsSent:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "notifications_sent_total"}),
		EmailFailures:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "email_failures_total"}),
		AlertPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "beach_ingest", Name: "alert_publish_failures_total"}),
	}
}

// Package metrics holds the Prometheus metrics of the search pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "intelsleuth"

// Metrics holds all pipeline metrics.
type Metrics struct {
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	RecordsDiscarded prometheus.Counter

	CollectorDuration *prometheus.HistogramVec
	CollectorFindings *prometheus.CounterVec

	DeliveriesTotal  *prometheus.CounterVec
	DeliveryAttempts prometheus.Histogram

	RateLimitedTotal prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates and registers the metrics with reg, or with the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initSearchMetrics(factory)
	m.initCollectorMetrics(factory)
	m.initDeliveryMetrics(factory)
	m.initHTTPMetrics(factory)

	m.RateLimitedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the per-client rate limit",
	})
	return m
}

func (m *Metrics) initSearchMetrics(factory promauto.Factory) {
	m.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Completed searches by query type",
		},
		[]string{"query_type"},
	)

	m.SearchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"query_type"},
	)

	m.RecordsDiscarded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "records_discarded_total",
		Help:      "Raw findings dropped during normalization",
	})
}

func (m *Metrics) initCollectorMetrics(factory promauto.Factory) {
	m.CollectorDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "collector_duration_seconds",
			Help:      "Collector call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"source", "outcome"},
	)

	m.CollectorFindings = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "collector_findings_total",
			Help:      "Raw findings returned by collectors",
		},
		[]string{"source"},
	)
}

func (m *Metrics) initDeliveryMetrics(factory promauto.Factory) {
	m.DeliveriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	m.DeliveryAttempts = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "webhook_delivery_attempts",
		Help:      "HTTP attempts per attempted webhook delivery",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})
}

// ObserveCollector records one collector call.
func (m *Metrics) ObserveCollector(source, outcome string, findings int, d time.Duration) {
	m.CollectorDuration.WithLabelValues(source, outcome).Observe(d.Seconds())
	if findings > 0 {
		m.CollectorFindings.WithLabelValues(source).Add(float64(findings))
	}
}

// ObserveDelivery records one webhook delivery.
func (m *Metrics) ObserveDelivery(outcome string, attempts int) {
	m.DeliveriesTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		m.DeliveryAttempts.Observe(float64(attempts))
	}
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(queryType string, discarded int, d time.Duration) {
	m.SearchesTotal.WithLabelValues(queryType).Inc()
	m.SearchDuration.WithLabelValues(queryType).Observe(d.Seconds())
	if discarded > 0 {
		m.RecordsDiscarded.Add(float64(discarded))
	}
}

// RateLimited records one rejected request.
func (m *Metrics) RateLimited() { m.RateLimitedTotal.Inc() }

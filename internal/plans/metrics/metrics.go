package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for MutationOutcome.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Cache result labels for ProductCache.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheError  = "error"
	CacheBypass = "bypass"
)

// Metrics provides observability for the plans module. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	// Mutation outcomes by entity kind, action and status
	MutationOutcome *prometheus.CounterVec

	// Rejections by kind, error code and the rule that failed
	Rejections *prometheus.CounterVec

	ValidateLatency *prometheus.HistogramVec
	ResolveLatency  *prometheus.HistogramVec

	// Product read-through cache lookups by result
	ProductCache *prometheus.CounterVec

	// Lifecycle events handed to each sink
	EventsPublished *prometheus.CounterVec
}

// New creates a new Metrics instance registered with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the plans metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MutationOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prevplan_mutations_total",
			Help: "Total create, update and delete requests by entity kind and outcome",
		}, []string{"kind", "action", "status"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prevplan_rejections_total",
			Help: "Total rejected candidates by entity kind, error code and failed rule",
		}, []string{"kind", "code", "rule"}),

		ValidateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prevplan_validate_duration_seconds",
			Help:    "Duration of rule evaluation per candidate",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}, []string{"kind"}),

		ResolveLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prevplan_resolve_duration_seconds",
			Help:    "Duration of reference resolution before validation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),

		ProductCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prevplan_product_cache_total",
			Help: "Product cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prevplan_events_published_total",
			Help: "Lifecycle events handed to each sink",
		}, []string{"sink", "kind"}),
	}
}

// IncrementOutcome records the outcome of one mutation request.
func (m *Metrics) IncrementOutcome(kind, action, status string) {
	if m != nil {
		m.MutationOutcome.WithLabelValues(kind, action, status).Inc()
	}
}

// IncrementRejection records the rule that turned a candidate down. Rule is
// empty for rejections raised before rule evaluation.
func (m *Metrics) IncrementRejection(kind, code, rule string) {
	if m != nil {
		m.Rejections.WithLabelValues(kind, code, rule).Inc()
	}
}

func (m *Metrics) ObserveValidateLatency(kind string, d time.Duration) {
	if m != nil {
		m.ValidateLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveResolveLatency(kind string, d time.Duration) {
	if m != nil {
		m.ResolveLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncrementProductCache records a cache lookup result.
func (m *Metrics) IncrementProductCache(result string) {
	if m != nil {
		m.ProductCache.WithLabelValues(result).Inc()
	}
}

// IncrementEventsPublished records one event delivered to sink.
func (m *Metrics) IncrementEventsPublished(sink, kind string) {
	if m != nil {
		m.EventsPublished.WithLabelValues(sink, kind).Inc()
	}
}

package kiln

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a [Factory] reports to. Every
// method is safe on a nil receiver so the factory can call them
// unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	constructions *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	cycles        prometheus.Counter
	duration      *prometheus.HistogramVec
}

// NewMetrics creates collectors under namespace, registered in their own
// registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		constructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "constructions_total",
				Help:      "Objects constructed from definitions, by lifetime and outcome.",
			},
			[]string{"lifetime", "outcome"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Lifetime cache hits, by tier.",
			},
			[]string{"tier"},
		),
		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instantiation_cycles_total",
				Help:      "Top-level calls that failed on an instantiation cycle.",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "create_duration_seconds",
				Help:      "Duration of top-level CreateDefinedObject calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(m.constructions, m.cacheHits, m.cycles, m.duration)
	return m
}

// Registry returns the registry holding the collectors, for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) constructed(l Lifetime, err error) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(l.String(), outcome(err)).Inc()
}

func (m *Metrics) cacheHit(tier string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(tier).Inc()
}

func (m *Metrics) cycle() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

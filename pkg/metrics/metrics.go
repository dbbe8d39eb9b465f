// Package metrics provides Prometheus instrumentation for rxflow operators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every rxflow metric name.
const DefaultNamespace = "rxflow"

// Registry holds all metric instances for rxflow operators.
type Registry struct {
	// Buffering Metrics
	BuffersOpened  *prometheus.CounterVec
	BuffersEmitted *prometheus.CounterVec
	BufferSize     *prometheus.HistogramVec
	BuffersActive  *prometheus.GaugeVec
	ValuesDropped  *prometheus.CounterVec

	// Timeout and Repeat Metrics
	TimeoutsFired  *prometheus.CounterVec
	RepeatAttempts *prometheus.CounterVec

	// Operator Lifecycle Metrics
	OperatorErrors      *prometheus.CounterVec
	ActiveSubscriptions *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by rxflow operators.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honoring the namespace and
// constant labels of cfg.
func NewRegistryWithConfig(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(reg)
	operatorLabels := []string{"operator", "name"}

	return &Registry{
		// Buffering Metrics
		BuffersOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "buffer",
				Name:        "opened_total",
				Help:        "Total number of buffers opened",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		BuffersEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "buffer",
				Name:        "emitted_total",
				Help:        "Total number of buffers emitted downstream",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		BufferSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "buffer",
				Name:        "size",
				Help:        "Number of values in emitted buffers",
				Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		BuffersActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "buffer",
				Name:        "active",
				Help:        "Number of buffers currently open",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		ValuesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "buffer",
				Name:        "values_dropped_total",
				Help:        "Total number of values that arrived while no buffer was open",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		// Timeout and Repeat Metrics
		TimeoutsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "timeout",
				Name:        "fired_total",
				Help:        "Total number of deadlines that switched to a fallback stream",
				ConstLabels: cfg.Labels,
			},
			[]string{"name"},
		),

		RepeatAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "repeat",
				Name:        "attempts_total",
				Help:        "Total number of source subscriptions made by repeat controllers",
				ConstLabels: cfg.Labels,
			},
			[]string{"name"},
		),

		// Operator Lifecycle Metrics
		OperatorErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "operator",
				Name:        "errors_total",
				Help:        "Total number of operators terminated by an error",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),

		ActiveSubscriptions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "operator",
				Name:        "subscriptions_active",
				Help:        "Number of live operator subscriptions",
				ConstLabels: cfg.Labels,
			},
			operatorLabels,
		),
	}
}

package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/verdant-ui/verdant/pkg/dom"
)

// engineMetrics holds the Prometheus collectors for one engine.
type engineMetrics struct {
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	opsTotal     *prometheus.CounterVec

	componentErrors     prometheus.Counter
	boundaryCatches     prometheus.Counter
	hydrationMismatches prometheus.Counter
	hydrationFallbacks  prometheus.Counter
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	factory := promauto.With(reg)
	return &engineMetrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "passes_total",
			Help:      "Completed reconciliation passes by phase.",
		}, []string{"phase"}),
		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "pass_duration_seconds",
			Help:      "Wall time per reconciliation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"phase"}),
		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "ops_total",
			Help:      "Primitive tree operations issued, by operation kind.",
		}, []string{"op"}),
		componentErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "component_errors_total",
			Help:      "Component render errors that reached the root uncontained.",
		}),
		boundaryCatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "boundary_catches_total",
			Help:      "Render errors captured by error boundaries.",
		}),
		hydrationMismatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "hydration_mismatches_total",
			Help:      "Recoverable server/client content mismatches during hydration.",
		}),
		hydrationFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "reconcile",
			Name:      "hydration_fallbacks_total",
			Help:      "Hydration attempts abandoned for a full client render.",
		}),
	}
}

// observePass records one completed pass and its primitive op mix.
func (m *engineMetrics) observePass(phase string, d time.Duration, ops []dom.Op) {
	m.passes.WithLabelValues(phase).Inc()
	m.passDuration.WithLabelValues(phase).Observe(d.Seconds())
	for _, op := range ops {
		m.opsTotal.WithLabelValues(op.Kind.String()).Inc()
	}
}

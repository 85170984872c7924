package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected       *prometheus.CounterVec
	StoreErrors    prometheus.Counter
	DegradedChecks prometheus.Counter
}

// New registers rate limit metrics on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "matdaan_ratelimit_rejected_total",
			Help: "Requests rejected by the per-IP rate limit, by endpoint class",
		}, []string{"class"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "matdaan_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed against the primary store",
		}),
		DegradedChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "matdaan_ratelimit_degraded_checks_total",
			Help: "Rate limit checks answered by the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

func (m *Metrics) IncrementDegraded() {
	if m == nil {
		return
	}
	m.DegradedChecks.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeMatched     = "matched"
	OutcomeNotMatched  = "not_matched"
	OutcomeNoFace      = "no_face"
	OutcomeUnknownUser = "unknown_user"
	OutcomeLocked      = "locked"
)

// Metrics provides observability for registration, face login and linking.
type Metrics struct {
	IdentitiesRegistered prometheus.Counter
	LoginAttempts        *prometheus.CounterVec
	MatchDistance        prometheus.Histogram
	FastPathHits         prometheus.Counter
	AuthenticateDuration prometheus.Histogram
	VotersLinked         prometheus.Counter
}

// New creates identity metrics registered on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IdentitiesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "matdaan_identities_registered_total",
			Help: "Total number of identities enrolled",
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "matdaan_face_login_attempts_total",
			Help: "Face login attempts by outcome",
		}, []string{"outcome"}),
		MatchDistance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "matdaan_face_match_distance",
			Help:    "Distance of the best candidate on successful face logins",
			Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.45, 0.5, 0.6},
		}),
		FastPathHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "matdaan_face_match_fast_path_total",
			Help: "Logins resolved by comparing only the claimed identity",
		}),
		AuthenticateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "matdaan_authenticate_duration_seconds",
			Help:    "Duration of face authentication including extraction",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		VotersLinked: factory.NewCounter(prometheus.CounterOpts{
			Name: "matdaan_voters_linked_total",
			Help: "Total number of successful voter links",
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m == nil {
		return
	}
	m.IdentitiesRegistered.Inc()
}

// ObserveLogin records an outcome; distance is only observed for matches.
func (m *Metrics) ObserveLogin(outcome string, distance float64, fastPath bool) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
	if outcome == OutcomeMatched {
		m.MatchDistance.Observe(distance)
		if fastPath {
			m.FastPathHits.Inc()
		}
	}
}

// ObserveAuthenticate records the duration since start.
func (m *Metrics) ObserveAuthenticate(start time.Time) {
	if m == nil {
		return
	}
	m.AuthenticateDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementLinked() {
	if m == nil {
		return
	}
	m.VotersLinked.Inc()
}

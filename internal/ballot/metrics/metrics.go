package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote outcomes.
const (
	OutcomeRecorded     = "recorded"
	OutcomeAlreadyVoted = "already_voted"
	OutcomeRejected     = "rejected"
)

// Metrics provides observability for vote casting.
type Metrics struct {
	VotesCast        *prometheus.CounterVec
	CastVoteDuration prometheus.Histogram
}

// New creates ballot metrics registered on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "matdaan_votes_cast_total",
			Help: "Vote attempts by outcome",
		}, []string{"outcome"}),
		CastVoteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "matdaan_cast_vote_duration_seconds",
			Help:    "Duration of CastVote including the ledger transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementVote(outcome string) {
	if m == nil {
		return
	}
	m.VotesCast.WithLabelValues(outcome).Inc()
}

// ObserveCastVote records the duration since start.
func (m *Metrics) ObserveCastVote(start time.Time) {
	if m == nil {
		return
	}
	m.CastVoteDuration.Observe(time.Since(start).Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transfer workflow.
type Metrics struct {
	// Operation outcomes: operation is apply|approve|reject|history,
	// outcome is ok or an error code
	Outcomes *prometheus.CounterVec

	OperationLatency *prometheus.HistogramVec

	// Reviewer lookups that fell back to an empty reviewer
	ReviewerMisses prometheus.Counter
}

// New creates the workflow metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "malpot_transfer_outcomes_total",
			Help: "Transfer workflow operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "malpot_transfer_operation_duration_seconds",
			Help:    "Duration of transfer workflow operations including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		ReviewerMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "malpot_transfer_reviewer_lookup_misses_total",
			Help: "Reviewer lookups in history that returned no reviewer",
		}),
	}
}

// Observe records one operation's outcome and duration.
func (m *Metrics) Observe(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Outcomes.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementReviewerMiss() {
	if m != nil {
		m.ReviewerMisses.Inc()
	}
}

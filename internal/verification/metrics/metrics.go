// Package metrics exposes Prometheus metrics for the verification ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	created      prometheus.Counter
	reciprocated prometheus.Counter
	failures     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New creates and registers the ledger metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifications_created_total",
			Help: "Total number of verification records created",
		}),
		reciprocated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifications_reciprocated_total",
			Help: "Total number of verification records created reciprocating an active reverse record",
		}),
		failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_verification_failures_total",
			Help: "Total number of failed ledger operations by reason",
		}, []string{"reason"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vouch_verification_operation_seconds",
			Help:    "Duration of ledger storage operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// RecordCreated counts a successful creation; reciprocated creations are
// counted on both collectors.
func (m *Metrics) RecordCreated(reciprocated bool) {
	if m == nil {
		return
	}
	m.created.Inc()
	if reciprocated {
		m.reciprocated.Inc()
	}
}

// RecordFailure counts a failed ledger operation by reason.
func (m *Metrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

// ObserveDuration records how long a storage operation took.
func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(seconds)
}

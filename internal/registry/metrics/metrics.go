package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels beyond the registry result slugs.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheInvalidation *prometheus.CounterVec
	AuditEmitFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "renterverify_registry_operations_total",
			Help: "Registry operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "renterverify_registry_operation_duration_seconds",
			Help:    "Registry operation latency including the ledger transaction",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		CacheInvalidation: f.NewCounterVec(prometheus.CounterOpts{
			Name: "renterverify_registry_cache_invalidations_total",
			Help: "Record cache invalidations by result",
		}, []string{"result"}),
		AuditEmitFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "renterverify_registry_audit_emit_failures_total",
			Help: "Audit events that could not be handed to the publisher",
		}),
	}
}

func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementCacheInvalidation(result string) {
	if m == nil {
		return
	}
	m.CacheInvalidation.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementAuditEmitFailures() {
	if m == nil {
		return
	}
	m.AuditEmitFailures.Inc()
}

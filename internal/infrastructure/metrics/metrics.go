package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the ledger. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Ledger operation metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Exchange rate metrics
	RateFallbacks *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationMismatchGauge prometheus.Gauge
	ReconciliationRuns          prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge
}

// New registers the ledger metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry registers the ledger metrics with reg. gatherer backs Handler.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: gatherer,

		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total ledger operations by type and outcome",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		RateFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rate_fallback_total",
				Help: "Conversions priced from the static fallback table",
			},
			[]string{"from", "to"},
		),

		ReconciliationMismatchGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_reconciliation_mismatches",
			Help: "Accounts whose cached balance disagrees with their wallets at the last run",
		}),
		ReconciliationRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_runs_total",
			Help: "Completed reconciliation runs",
		}),

		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_db_connections",
			Help: "Current number of acquired database connections",
		}),
	}
}

// ObserveOperation records the outcome and latency of a ledger operation.
func (m *Metrics) ObserveOperation(operation, status string, duration time.Duration) {
	m.Operations.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RateFallback counts a conversion priced from the fallback table.
func (m *Metrics) RateFallback(from, to string) {
	m.RateFallbacks.WithLabelValues(from, to).Inc()
}

// ReconciliationMismatches publishes the mismatch count of a finished run.
func (m *Metrics) ReconciliationMismatches(count int) {
	m.ReconciliationMismatchGauge.Set(float64(count))
	m.ReconciliationRuns.Inc()
}

// ObserveDBConnections publishes the number of acquired pool connections.
func (m *Metrics) ObserveDBConnections(acquired int32) {
	m.DBConnections.Set(float64(acquired))
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

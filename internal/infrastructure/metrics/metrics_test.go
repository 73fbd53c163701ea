package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry, registry)
}

func value(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		t.Fatalf("write metric: %v", err)
	}

	switch {
	case pb.Counter != nil:
		return pb.GetCounter().GetValue()
	case pb.Gauge != nil:
		return pb.GetGauge().GetValue()
	default:
		t.Fatalf("unsupported metric type")
		return 0
	}
}

func TestObserveOperation(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveOperation("transfer", "completed", 20*time.Millisecond)
	m.ObserveOperation("transfer", "completed", 30*time.Millisecond)
	m.ObserveOperation("transfer", "failed", time.Millisecond)

	if got := value(t, m.Operations.WithLabelValues("transfer", "completed")); got != 2 {
		t.Fatalf("expected 2 completed transfers, got %v", got)
	}
	if got := value(t, m.Operations.WithLabelValues("transfer", "failed")); got != 1 {
		t.Fatalf("expected 1 failed transfer, got %v", got)
	}
}

func TestRateFallback(t *testing.T) {
	m := newTestMetrics(t)

	m.RateFallback("USD", "EUR")

	if got := value(t, m.RateFallbacks.WithLabelValues("USD", "EUR")); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
}

func TestReconciliationMismatches(t *testing.T) {
	m := newTestMetrics(t)

	m.ReconciliationMismatches(3)
	m.ReconciliationMismatches(0)

	if got := value(t, m.ReconciliationMismatchGauge); got != 0 {
		t.Fatalf("expected gauge to track the last run, got %v", got)
	}
	if got := value(t, m.ReconciliationRuns); got != 2 {
		t.Fatalf("expected 2 runs, got %v", got)
	}
}

func TestObserveDBConnections(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveDBConnections(7)

	if got := value(t, m.DBConnections); got != 7 {
		t.Fatalf("expected 7 connections, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveOperation("convert", "completed", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ledger_operations_total") {
		t.Fatalf("expected ledger_operations_total in output")
	}
}

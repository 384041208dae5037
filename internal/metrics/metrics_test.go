package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.ObserveBuild(0.002)
	m.IntegrityWarning(KindZeroSum)
	m.IntegrityWarning(KindZeroSum)
	m.IntegrityWarning(KindIterationCap)
	m.SettlementsRecorded(3)
	m.NothingToSettle()

	if got := testutil.ToFloat64(m.LedgerBuilds); got != 1 {
		t.Errorf("ledger builds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IntegrityWarnings.WithLabelValues(KindZeroSum)); got != 2 {
		t.Errorf("zero_sum warnings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SettlementsWritten); got != 3 {
		t.Errorf("settlements written = %v, want 3", got)
	}

	if _, err := New(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveBuild(1)
	m.IntegrityWarning(KindUnapplied)
	m.SettlementsRecorded(1)
	m.NothingToSettle()
}

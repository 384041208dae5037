// Package metrics holds the Prometheus collectors for the ledger engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Integrity warning kinds.
const (
	KindZeroSum      = "zero_sum"
	KindIterationCap = "iteration_cap"
	KindUnbalanced   = "unbalanced"
	KindUnapplied    = "unapplied_settlement"
)

// Metrics groups the engine's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	LedgerBuilds       prometheus.Counter
	LedgerBuildSeconds prometheus.Histogram
	IntegrityWarnings  *prometheus.CounterVec
	SettlementsWritten prometheus.Counter
	AlreadySettled     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		LedgerBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fridgeshare",
			Name:      "ledger_builds_total",
			Help:      "Number of times a fridge ledger was rebuilt from storage.",
		}),
		LedgerBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fridgeshare",
			Name:      "ledger_build_duration_seconds",
			Help:      "Time spent loading and building a fridge ledger.",
			Buckets:   prometheus.DefBuckets,
		}),
		IntegrityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridgeshare",
			Name:      "integrity_warnings_total",
			Help:      "Data-integrity anomalies detected while computing balances.",
		}, []string{"kind"}),
		SettlementsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fridgeshare",
			Name:      "settlements_written_total",
			Help:      "Settlement rows recorded by clear-balance requests.",
		}),
		AlreadySettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fridgeshare",
			Name:      "clear_noop_total",
			Help:      "Clear-balance requests for users with nothing to settle.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.LedgerBuilds, m.LedgerBuildSeconds, m.IntegrityWarnings, m.SettlementsWritten, m.AlreadySettled,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveBuild records one ledger build.
func (m *Metrics) ObserveBuild(seconds float64) {
	if m == nil {
		return
	}
	m.LedgerBuilds.Inc()
	m.LedgerBuildSeconds.Observe(seconds)
}

// IntegrityWarning counts one anomaly of the given kind.
func (m *Metrics) IntegrityWarning(kind string) {
	if m == nil {
		return
	}
	m.IntegrityWarnings.WithLabelValues(kind).Inc()
}

// SettlementsRecorded counts n written settlement rows.
func (m *Metrics) SettlementsRecorded(n int) {
	if m == nil {
		return
	}
	m.SettlementsWritten.Add(float64(n))
}

// NothingToSettle counts a no-op clear request.
func (m *Metrics) NothingToSettle() {
	if m == nil {
		return
	}
	m.AlreadySettled.Inc()
}

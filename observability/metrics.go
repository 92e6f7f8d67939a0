package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// batch recomputation engine.
type Metrics struct {
	UnitsSucceeded prometheus.Counter
	UnitsFailed    prometheus.Counter
	RunsStarted    *prometheus.CounterVec // labels: trigger={scheduled,on_demand}
	RunActive      prometheus.Gauge
	RunDuration    prometheus.Histogram
	UnitDuration   prometheus.Histogram
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UnitsSucceeded,
		m.UnitsFailed,
		m.RunsStarted,
		m.RunActive,
		m.RunDuration,
		m.UnitDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UnitsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climrisk",
			Name:      "batch_units_succeeded_total",
			Help:      "Total batch units that computed and persisted a risk result.",
		}),
		UnitsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climrisk",
			Name:      "batch_units_failed_total",
			Help:      "Total batch units recorded as failed, including timeouts and missing data.",
		}),
		RunsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climrisk",
			Name:      "batch_runs_started_total",
			Help:      "Batch runs started, by trigger kind.",
		}, []string{"trigger"}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climrisk",
			Name:      "batch_run_active",
			Help:      "1 while a batch run is in flight, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climrisk",
			Name:      "batch_run_duration_seconds",
			Help:      "Wall time of a complete batch run, trigger to terminal status.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
		}),
		UnitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climrisk",
			Name:      "batch_unit_duration_seconds",
			Help:      "Duration of one end-to-end unit computation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		}),
	}
}

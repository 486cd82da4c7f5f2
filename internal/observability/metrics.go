package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the risk engine.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	ObservationErrors    prometheus.Counter
	ServiceRunning       prometheus.Gauge

	// Analytics run metrics.
	AnalyticsRuns   prometheus.Counter
	RunDuration     prometheus.Histogram
	LocationsScored prometheus.Histogram

	// Matcher metrics.
	MatchOutcomes *prometheus.CounterVec // labels: outcome={matched,unmatched}

	// Nowcast metrics.
	NowcastRuns        prometheus.Counter
	NowcastWarnings    prometheus.Counter
	NowcastEmergencies prometheus.Counter
	AlertsPublished    prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "observations_consumed_total",
			Help:      "Total observation messages read from the source topic.",
		}),
		ObservationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "observation_errors_total",
			Help:      "Total observation messages that failed to parse.",
		}),
		ServiceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "risk_engine",
			Name:      "service_running",
			Help:      "1 when the engine is active, 0 when shut down.",
		}),
		AnalyticsRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "analytics_runs_total",
			Help:      "Total completed analytics runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risk_engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete analytics run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		LocationsScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risk_engine",
			Name:      "locations_scored",
			Help:      "Number of locations scored per analytics run.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160},
		}),
		MatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "reservoir_match_total",
			Help:      "Reservoir matcher outcomes per scored location.",
		}, []string{"outcome"}),
		NowcastRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "nowcast_runs_total",
			Help:      "Total completed nowcast runs.",
		}),
		NowcastWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "nowcast_warnings_total",
			Help:      "Total location warnings raised by nowcast runs.",
		}),
		NowcastEmergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "nowcast_emergencies_total",
			Help:      "Total location emergencies raised by nowcast runs.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "alerts_published_total",
			Help:      "Total nowcast alerts published to the sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.ObservationsConsumed,
		m.ObservationErrors,
		m.ServiceRunning,
		m.AnalyticsRuns,
		m.RunDuration,
		m.LocationsScored,
		m.MatchOutcomes,
		m.NowcastRuns,
		m.NowcastWarnings,
		m.NowcastEmergencies,
		m.AlertsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "observations_consumed_total"}),
		ObservationErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "observation_errors_total"}),
		ServiceRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "risk_engine", Name: "service_running"}),
		AnalyticsRuns:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "analytics_runs_total"}),
		RunDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "risk_engine", Name: "run_duration_seconds"}),
		LocationsScored:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "risk_engine", Name: "locations_scored"}),
		MatchOutcomes:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "risk_engine", Name: "reservoir_match_total"}, []string{"outcome"}),
		NowcastRuns:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "nowcast_runs_total"}),
		NowcastWarnings:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "nowcast_warnings_total"}),
		NowcastEmergencies:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "nowcast_emergencies_total"}),
		AlertsPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "risk_engine", Name: "alerts_published_total"}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert derivation pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,empty,error}
	AlertsGenerated *prometheus.CounterVec // labels: kind
	CitiesAlerted   prometheus.Histogram
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastRunUnix     prometheus.Gauge

	// Export metrics.
	ExportRecords           prometheus.Counter
	ExportSkipped           *prometheus.CounterVec   // labels: reason={city,event}
	VocabularyFetchDuration *prometheus.HistogramVec // labels: resource={events,cities}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo_alerts",
			Name:      "runs_total",
			Help:      "Derivation runs by outcome.",
		}, []string{"outcome"}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo_alerts",
			Name:      "alerts_generated_total",
			Help:      "Alert records produced, by alert kind.",
		}, []string{"kind"}),
		CitiesAlerted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "meteo_alerts",
			Name:      "cities_alerted",
			Help:      "Number of cities with at least one alert per run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "meteo_alerts",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete scan-aggregate-export run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_alerts",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline loop is active, 0 when shut down.",
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_alerts",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed derivation run.",
		}),
		ExportRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteo_alerts",
			Name:      "export_records_total",
			Help:      "Export records handed to the delivery sinks.",
		}),
		ExportSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo_alerts",
			Name:      "export_skipped_total",
			Help:      "Alerts dropped during export by unmatched vocabulary entry.",
		}, []string{"reason"}),
		VocabularyFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteo_alerts",
			Name:      "vocabulary_fetch_duration_seconds",
			Help:      "Gateway vocabulary fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource"}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.AlertsGenerated,
		m.CitiesAlerted,
		m.RunDuration,
		m.PipelineRunning,
		m.LastRunUnix,
		m.ExportRecords,
		m.ExportSkipped,
		m.VocabularyFetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "meteo_alerts", Name: "runs_total"}, []string{"outcome"}),
		AlertsGenerated:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "meteo_alerts", Name: "alerts_generated_total"}, []string{"kind"}),
		CitiesAlerted:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "meteo_alerts", Name: "cities_alerted"}),
		RunDuration:             prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "meteo_alerts", Name: "run_duration_seconds"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "meteo_alerts", Name: "pipeline_running"}),
		LastRunUnix:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "meteo_alerts", Name: "last_run_timestamp_seconds"}),
		ExportRecords:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "meteo_alerts", Name: "export_records_total"}),
		ExportSkipped:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "meteo_alerts", Name: "export_skipped_total"}, []string{"reason"}),
		VocabularyFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "meteo_alerts", Name: "vocabulary_fetch_duration_seconds"}, []string{"resource"}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "synop_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	BulletinsFetched prometheus.Counter
	FetchErrors      prometheus.Counter
	RecordsDecoded   prometheus.Counter
	RecordsProduced  prometheus.Counter
	LoadErrors       prometheus.Counter
	StationsDropped  prometheus.Counter
	UnparsedGroups   prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Cycle metrics.
	RecordsPerBulletin prometheus.Histogram
	CycleDuration      prometheus.Histogram

	// Bulletin source metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	FetchDuration prometheus.Histogram
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BulletinsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulletins_fetched_total",
			Help:      "Total bulletins retrieved from the source.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total bulletin fetches that failed after retries.",
		}),
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Total station records decoded from bulletins.",
		}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_produced_total",
			Help:      "Total records written to the sink topic.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Total failed writes to the sink.",
		}),
		StationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_dropped_total",
			Help:      "Total station headers dropped for malformed coordinates.",
		}),
		UnparsedGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unparsed_groups_total",
			Help:      "Total report groups that could not be interpreted.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RecordsPerBulletin: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_bulletin",
			Help:      "Number of station records decoded per bulletin.",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 400, 800},
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-decode-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Bulletin HTTP requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Bulletin HTTP request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Bulletin cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.BulletinsFetched,
		m.FetchErrors,
		m.RecordsDecoded,
		m.RecordsProduced,
		m.LoadErrors,
		m.StationsDropped,
		m.UnparsedGroups,
		m.PipelineRunning,
		m.RecordsPerBulletin,
		m.CycleDuration,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchCache,
	}
}

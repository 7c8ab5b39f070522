package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notam_briefing"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// NOTAM fetch, briefing and Kafka pipeline paths.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	RequestsRejected prometheus.Counter
	BriefingRetries  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Upstream NOTAM source metrics.
	SourceRequests  *prometheus.CounterVec   // labels: source={primary,secondary}, outcome={success,empty,error}
	SourceDuration  *prometheus.HistogramVec // labels: source
	Fallbacks       prometheus.Counter
	RecordsFetched  *prometheus.CounterVec // labels: source
	RecordsFiltered prometheus.Counter

	// Briefing metrics.
	BudgetDropped      prometheus.Counter
	Truncations        prometheus.Counter
	SummarizerRequests *prometheus.CounterVec   // labels: provider, outcome={success,error}
	SummarizerDuration *prometheus.HistogramVec // labels: provider
	SummaryCache       *prometheus.CounterVec   // labels: result={hit,miss}
	SummarizerEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total briefing requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total briefings written to the sink topic.",
		}),
		RequestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Briefing requests committed without a briefing because they were invalid.",
		}),
		BriefingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "briefing_retries_total",
			Help:      "Briefing attempts retried after a NOTAM source or summarizer failure.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the Kafka pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "NOTAM source queries by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "NOTAM source request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Queries that fell back to the secondary source.",
		}),
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "NOTAM records returned by each source before filtering.",
		}, []string{"source"}),
		RecordsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_filtered_total",
			Help:      "NOTAM records removed by the time window filter.",
		}),
		BudgetDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_dropped_records_total",
			Help:      "Records dropped to fit the summarizer token budget.",
		}),
		Truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_input_truncations_total",
			Help:      "Summarizer inputs cut at character level after record reduction.",
		}),
		SummarizerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_requests_total",
			Help:      "Summarizer calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		SummarizerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarizer_duration_seconds",
			Help:      "Summarizer request duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		SummaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		SummarizerEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summarizer_enabled",
			Help:      "1 when an LLM summarizer is configured, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.RequestsRejected,
		m.BriefingRetries,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SourceRequests,
		m.SourceDuration,
		m.Fallbacks,
		m.RecordsFetched,
		m.RecordsFiltered,
		m.BudgetDropped,
		m.Truncations,
		m.SummarizerRequests,
		m.SummarizerDuration,
		m.SummaryCache,
		m.SummarizerEnabled,
	}
}

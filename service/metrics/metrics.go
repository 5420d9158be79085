package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Indexer API metrics
	indexerCallsTotal         *prometheus.CounterVec
	indexerCallDuration       *prometheus.HistogramVec
	indexerRateLimitHits      prometheus.Counter
	indexerRateLimitExhausted prometheus.Counter

	// Export pipeline metrics
	exportsTotal              *prometheus.CounterVec
	exportDuration            *prometheus.HistogramVec
	exportWarningsTotal       *prometheus.CounterVec
	transactionsExportedTotal *prometheus.CounterVec
	detailFetchFailuresTotal  prometheus.Counter
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		indexerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_api_calls_total",
				Help: "Total number of indexer API calls by method and status",
			},
			[]string{"method", "status"},
		),
		indexerCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexer_api_call_duration_seconds",
				Help:    "Duration of indexer API calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		indexerRateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_rate_limit_hits_total",
				Help: "Total number of indexer rate limit hits (429 responses)",
			},
		),
		indexerRateLimitExhausted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_rate_limit_exhausted_total",
				Help: "Total number of requests that exhausted the 429 retry budget",
			},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_total",
				Help: "Total number of export runs by terminal status",
			},
			[]string{"status"},
		),
		exportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "export_duration_seconds",
				Help:    "Duration of export runs in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		exportWarningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "export_warnings_total",
				Help: "Total number of non-fatal export degradations by kind",
			},
			[]string{"kind"},
		),
		transactionsExportedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_exported_total",
				Help: "Total number of transactions included in export reports by type",
			},
			[]string{"type"},
		),
		detailFetchFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "detail_fetch_failures_total",
				Help: "Total number of individual transaction detail fetches that failed",
			},
		),
	}
}

// Indexer API metric helpers

// RecordIndexerCall records an indexer API call with duration.
func (m *Metrics) RecordIndexerCall(method, status string, duration float64) {
	m.indexerCallsTotal.WithLabelValues(method, status).Inc()
	m.indexerCallDuration.WithLabelValues(method).Observe(duration)
}

// RecordRateLimitHit records a single 429 response.
func (m *Metrics) RecordRateLimitHit() {
	m.indexerRateLimitHits.Inc()
}

// RecordRateLimitExhausted records a request that ran out of 429 retries.
func (m *Metrics) RecordRateLimitExhausted() {
	m.indexerRateLimitExhausted.Inc()
}

// Export pipeline metric helpers

// RecordExport records a completed export run.
func (m *Metrics) RecordExport(status string, duration float64) {
	m.exportsTotal.WithLabelValues(status).Inc()
	m.exportDuration.WithLabelValues(status).Observe(duration)
}

// RecordExportWarning records a non-fatal degradation.
func (m *Metrics) RecordExportWarning(kind string) {
	m.exportWarningsTotal.WithLabelValues(kind).Inc()
}

// RecordTransactionsExported records transactions included in a report.
func (m *Metrics) RecordTransactionsExported(txType string, count int) {
	m.transactionsExportedTotal.WithLabelValues(txType).Add(float64(count))
}

// RecordDetailFetchFailure records one failed detail/UTXO fetch pair.
func (m *Metrics) RecordDetailFetchFailure() {
	m.detailFetchFailuresTotal.Inc()
}

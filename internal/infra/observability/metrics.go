package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the analytics service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	datasetsIngested prometheus.Counter
	rowsIngested     prometheus.Counter
	analysesTotal    *prometheus.CounterVec
	bundleQueries    prometheus.Counter
	notifications    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loyalty_stage_duration_seconds",
				Help:    "Duration of pipeline stages by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		datasetsIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loyalty_datasets_ingested_total",
				Help: "Total datasets uploaded and parsed.",
			},
		),
		rowsIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loyalty_rows_ingested_total",
				Help: "Total transaction rows parsed.",
			},
		),
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_analyses_total",
				Help: "Total analysis runs by status.",
			},
			[]string{"status"},
		),
		bundleQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loyalty_bundle_queries_total",
				Help: "Total bundle recommendation queries.",
			},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_notifications_total",
				Help: "Total notification delivery attempts by outcome.",
			},
			[]string{"outcome"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordStageDuration records the duration of one pipeline stage.
func (m *Metrics) RecordStageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncrDatasetIngested counts one parsed upload of n rows.
func (m *Metrics) IncrDatasetIngested(rows int) {
	m.datasetsIngested.Inc()
	m.rowsIngested.Add(float64(rows))
}

// IncrAnalysis increments the analysis counter with a status label.
func (m *Metrics) IncrAnalysis(status string) {
	m.analysesTotal.WithLabelValues(status).Inc()
}

// IncrBundleQuery counts one bundle recommendation query.
func (m *Metrics) IncrBundleQuery() {
	m.bundleQueries.Inc()
}

// IncrNotification counts one delivery attempt by outcome.
func (m *Metrics) IncrNotification(outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetPipelineSnapshot returns a snapshot of pipeline metrics suitable for
// the GET /v1/metrics/pipeline endpoint.
func (m *Metrics) GetPipelineSnapshot() *domain.PipelineMetrics {
	ok := getCounterValue(m.analysesTotal, "success")
	failed := getCounterValue(m.analysesTotal, "error")

	sent := getCounterValue(m.notifications, domain.NotifySent) +
		getCounterValue(m.notifications, domain.NotifyMocked)
	notifErrs := getCounterValue(m.notifications, domain.NotifyFailed) +
		getCounterValue(m.notifications, domain.NotifyInvalidNumber)

	hits := getCounterValue(m.cacheHits, "dataset")
	misses := getCounterValue(m.cacheMisses, "dataset")

	errorRate := float64(0)
	if ok+failed > 0 {
		errorRate = failed / (ok + failed)
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.PipelineMetrics{
		DatasetsIngested:   int64(readCounter(m.datasetsIngested)),
		RowsIngested:       int64(readCounter(m.rowsIngested)),
		AnalysesCompleted:  int64(ok),
		AnalysesFailed:     int64(failed),
		BundleQueries:      int64(readCounter(m.bundleQueries)),
		NotificationsSent:  int64(sent),
		NotificationErrors: int64(notifErrs),
		ErrorRate:          errorRate,
		CacheHitRate:       cacheHitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

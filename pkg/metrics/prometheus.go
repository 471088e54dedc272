// Package metrics provides Prometheus metrics for the kpiboard dashboard and exporter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets covers chart renders (a few ms) up to browser captures (seconds).
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// Manager owns every Prometheus collector used by kpiboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset
	datasetObservations prometheus.Gauge
	datasetCategories   *prometheus.GaugeVec
	datasetLoadDuration prometheus.Gauge

	// Dashboard pipeline
	dashboardBuilds        prometheus.Counter
	dashboardBuildErrors   prometheus.Counter
	dashboardBuildDuration prometheus.Histogram
	chartRenderDuration    *prometheus.HistogramVec
	chartRenderErrors      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Snapshot exporter
	snapshotRuns          *prometheus.CounterVec
	snapshotStageDuration *prometheus.HistogramVec
	snapshotArtifactBytes *prometheus.GaugeVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // served by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kpiboard",
		subsystem:        "dashboard",
		histogramBuckets: latencyBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.datasetObservations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_observations",
		Help:        "Number of observations in the loaded dataset",
		ConstLabels: m.constLabels,
	})

	m.datasetCategories = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_categories",
		Help:        "Distinct labels per categorical dimension in the loaded dataset",
		ConstLabels: m.constLabels,
	}, []string{"dimension"})

	m.datasetLoadDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_load_duration_milliseconds",
		Help:        "Duration of the last dataset load in milliseconds",
		ConstLabels: m.constLabels,
	})

	m.dashboardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "builds_total",
		Help:        "Total number of dashboard pipeline runs",
		ConstLabels: m.constLabels,
	})

	m.dashboardBuildErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "build_errors_total",
		Help:        "Total number of failed dashboard pipeline runs",
		ConstLabels: m.constLabels,
	})

	m.dashboardBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "build_duration_milliseconds",
		Help:        "Aggregate and render pipeline duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.chartRenderDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "chart_render_duration_milliseconds",
		Help:        "Chart render duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"chart"})

	m.chartRenderErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "chart_render_errors_total",
		Help:        "Total number of chart render failures",
		ConstLabels: m.constLabels,
	}, []string{"chart"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "Total number of HTTP error responses by endpoint and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.snapshotRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "snapshot",
		Name:        "runs_total",
		Help:        "Snapshot export runs by outcome stage",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.snapshotStageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "snapshot",
		Name:        "stage_duration_milliseconds",
		Help:        "Duration of each snapshot stage in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.snapshotArtifactBytes = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "snapshot",
		Name:        "artifact_bytes",
		Help:        "Size of the last written snapshot artifact",
		ConstLabels: m.constLabels,
	}, []string{"artifact"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: m.constLabels,
	})
}

// Dataset

// SetDataset records the size of the loaded dataset.
func (m *Manager) SetDataset(observations, modelCategories, questionCategories, models int, loadMs float64) {
	m.datasetObservations.Set(float64(observations))
	m.datasetCategories.WithLabelValues("model_category").Set(float64(modelCategories))
	m.datasetCategories.WithLabelValues("question_category").Set(float64(questionCategories))
	m.datasetCategories.WithLabelValues("model").Set(float64(models))
	m.datasetLoadDuration.Set(loadMs)
}

// Dashboard pipeline

// RecordBuild records one pipeline run.
func (m *Manager) RecordBuild(durationMs float64, err error) {
	m.dashboardBuilds.Inc()
	m.dashboardBuildDuration.Observe(durationMs)
	if err != nil {
		m.dashboardBuildErrors.Inc()
	}
}

// RecordChartRender records the latency of one chart render.
func (m *Manager) RecordChartRender(chart string, durationMs float64, err error) {
	m.chartRenderDuration.WithLabelValues(chart).Observe(durationMs)
	if err != nil {
		m.chartRenderErrors.WithLabelValues(chart).Inc()
	}
}

// HTTP

// RecordHTTPRequest records an HTTP request and its latency.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Snapshot

// RecordSnapshotStage records the latency of one exporter stage.
func (m *Manager) RecordSnapshotStage(stage string, durationMs float64) {
	m.snapshotStageDuration.WithLabelValues(stage).Observe(durationMs)
}

// RecordSnapshotRun records the outcome of an export run ("ok" or the failed stage).
func (m *Manager) RecordSnapshotRun(outcome string) {
	m.snapshotRuns.WithLabelValues(outcome).Inc()
}

// SetSnapshotArtifactBytes records the size of a written artifact.
func (m *Manager) SetSnapshotArtifactBytes(artifact string, size int) {
	m.snapshotArtifactBytes.WithLabelValues(artifact).Set(float64(size))
}

// System

// UpdateSystem records memory, goroutine and GC pause figures.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers backed by the global manager.

// Default returns the global manager bound to the custom registry.
func Default() *Manager { return globalManager }

// SetDataset records dataset size on the global manager.
func SetDataset(observations, modelCategories, questionCategories, models int, loadMs float64) {
	globalManager.SetDataset(observations, modelCategories, questionCategories, models, loadMs)
}

// RecordBuild records a pipeline run on the global manager.
func RecordBuild(durationMs float64, err error) { globalManager.RecordBuild(durationMs, err) }

// RecordChartRender records a chart render on the global manager.
func RecordChartRender(chart string, durationMs float64, err error) {
	globalManager.RecordChartRender(chart, durationMs, err)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an HTTP error on the global manager.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}

// RecordSnapshotStage records an exporter stage on the global manager.
func RecordSnapshotStage(stage string, durationMs float64) {
	globalManager.RecordSnapshotStage(stage, durationMs)
}

// RecordSnapshotRun records an export outcome on the global manager.
func RecordSnapshotRun(outcome string) { globalManager.RecordSnapshotRun(outcome) }

// SetSnapshotArtifactBytes records an artifact size on the global manager.
func SetSnapshotArtifactBytes(artifact string, size int) {
	globalManager.SetSnapshotArtifactBytes(artifact, size)
}

// UpdateSystem records system figures on the global manager.
func UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

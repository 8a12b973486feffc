package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scan (reconciliation) metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_scan_runs_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"status"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_scan_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed reconciliation pass",
		},
	)

	ScanEntriesChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_scan_entries_changed_total",
			Help: "Entries added or removed by reconciliation",
		},
		[]string{"change"}, // "added", "removed"
	)

	DegradedAssetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_degraded_assets_total",
			Help: "Per-file derivation failures that fell back to defaults",
		},
		[]string{"stage"}, // "probe", "preview", "stat"
	)

	CleanupFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_cleanup_failures_total",
			Help: "Best-effort file deletions that failed",
		},
		[]string{"kind"}, // "preview", "source"
	)
)

// Catalog operation metrics
var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_operations_total",
			Help: "Catalog operations by outcome",
		},
		[]string{"operation", "status"},
	)

	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_entries",
			Help: "Number of entries in the catalog",
		},
	)

	CatalogSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_size_bytes",
			Help: "Total size of all cataloged files",
		},
	)

	CatalogDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_duration_seconds",
			Help: "Total running time of all cataloged movies",
		},
	)

	CatalogAverageRating = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_average_rating",
			Help: "Mean rating over entries with a numeric rating",
		},
	)
)

// External tool metrics
var (
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_probe_total",
			Help: "Metadata probe invocations by outcome",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_probe_duration_seconds",
			Help:    "Duration of ffprobe invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PreviewGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_preview_generations_total",
			Help: "Preview generations by source kind and outcome",
		},
		[]string{"source", "status"}, // source: "video", "image"
	)

	PreviewGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_preview_generation_duration_seconds",
			Help:    "Duration of preview generation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)
)

// Store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_store_operations_total",
			Help: "Catalog store loads and saves by outcome",
		},
		[]string{"backend", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_store_operation_duration_seconds",
			Help:    "Catalog store load and save duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_db_transaction_duration_seconds",
			Help:    "SQLite transaction duration by result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"result"},
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_db_rows_affected",
			Help:    "Rows written per SQLite statement kind",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_db_connections_open",
			Help: "Open SQLite connections",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_filesystem_operation_errors_total",
			Help: "Filesystem operation errors by volume",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_filesystem_retry_attempts_total",
			Help: "Retries caused by stale NFS handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_filesystem_retry_success_total",
			Help: "Operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_catalog_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_catalog_filesystem_retry_duration_seconds",
			Help:    "Total time spent in an operation including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_catalog_memory_paused",
			Help: "1 while scan derivation is paused for memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_catalog_memory_gc_pauses_total",
			Help: "Times memory pressure paused scan derivation",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movie_catalog_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

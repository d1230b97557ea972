package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Store metrics
var (
	StoreQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_store_queries_total",
			Help: "Total number of document store queries",
		},
		[]string{"operation", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_store_query_duration_seconds",
			Help:    "Document store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_store_up",
			Help: "Whether the last store ping succeeded (1 = up, 0 = down)",
		},
	)
)

// Catalog metrics
var (
	ContentResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_content_resolutions_total",
			Help: "Total number of content id to hash resolutions by outcome",
		},
		[]string{"outcome"}, // "found", "not_found", "bad_request", "error"
	)

	ContentResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_content_resolution_duration_seconds",
			Help:    "Content hash resolution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	PlaylistLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_playlist_lookups_total",
			Help: "Total number of playlist lookups by outcome",
		},
		[]string{"outcome"},
	)

	ListedPlaylists = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_listed_playlists",
			Help:    "Number of playlists returned per listing",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	PartialListingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_partial_listings_total",
			Help: "Total number of listings that returned partial results after a store failure",
		},
	)

	CatalogPlaylists = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_playlists",
			Help: "Number of playlists in the catalog",
		},
	)

	CatalogContent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_content_records",
			Help: "Number of content records in the catalog by content type",
		},
		[]string{"type"},
	)
)

// Asset metrics
var (
	AssetOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_asset_opens_total",
			Help: "Total number of asset open attempts by outcome",
		},
		[]string{"outcome"}, // "success", "not_found", "rejected", "error"
	)

	AssetBytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_asset_bytes_served_total",
			Help: "Total number of asset bytes written to clients",
		},
	)

	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_downloads_total",
			Help: "Total number of completed, failed and aborted downloads",
		},
		[]string{"status"}, // "complete", "client_gone", "error"
	)
)

// Asset audit metrics
var (
	AuditRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_audit_runs_total",
			Help: "Total number of asset audits by status",
		},
		[]string{"status"}, // "success", "error"
	)

	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_audit_duration_seconds",
			Help:    "Duration of a full asset audit in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
	)

	AuditRecordsChecked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_audit_records_checked",
			Help: "Number of content records checked by the last asset audit",
		},
	)

	AuditAssetsMissing = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_audit_assets_missing",
			Help: "Number of content records whose asset file was missing at the last audit",
		},
	)

	AuditWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_audit_workers",
			Help: "Number of workers used by the asset audit",
		},
	)

	AuditLastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_audit_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful asset audit",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after a stale NFS handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors seen",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version", "store_driver"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion, storeDriver string) {
	AppInfo.WithLabelValues(version, commit, goVersion, storeDriver).Set(1)
}

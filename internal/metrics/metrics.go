package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Store metrics
var (
	StoreQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_store_queries_total",
			Help: "Total number of store queries",
		},
		[]string{"operation", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_store_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StoreTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_store_transaction_duration_seconds",
			Help:    "Store batch transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"result"}, // "commit", "rollback"
	)

	StoreWriteRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_indexer_store_write_retries_total",
			Help: "Total number of retried store writes",
		},
	)
)

// Indexer metrics
var (
	IndexRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_indexer_runs_total",
			Help: "Total number of indexing runs",
		},
	)

	IndexRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_run_in_progress",
			Help: "Whether an indexing run is currently in progress (0 or 1)",
		},
	)

	IndexLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_last_run_timestamp",
			Help: "Unix timestamp of the last completed indexing run",
		},
	)

	IndexLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_last_run_duration_seconds",
			Help: "Duration of the last indexing run in seconds",
		},
	)

	IndexFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_files_processed_total",
			Help: "Files processed by the indexer, by outcome",
		},
		[]string{"outcome"}, // "created", "updated", "unchanged", "failed"
	)

	IndexVolumesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_volumes_skipped_total",
			Help: "Volumes skipped before scanning, by reason",
		},
		[]string{"reason"},
	)

	IndexSubtreeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_indexer_subtree_errors_total",
			Help: "Unreadable subtrees skipped during scans",
		},
	)

	IndexWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_extract_workers",
			Help: "Number of extraction workers in the current run",
		},
	)
)

// Read cache metrics
var (
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_cache_requests_total",
			Help: "Read cache lookups, by result",
		},
		[]string{"result"}, // "hit", "miss", "coalesced"
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_cache_evictions_total",
			Help: "Read cache evictions, by cause",
		},
		[]string{"cause"}, // "ttl", "capacity", "flush"
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_cache_entries",
			Help: "Current number of read cache entries",
		},
	)

	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_cache_bytes",
			Help: "Approximate total size of cached payloads in bytes",
		},
	)
)

// Tag extraction metrics
var (
	TagExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_tag_extractions_total",
			Help: "Tag extraction attempts, by status",
		},
		[]string{"status"}, // "ok", "empty", "error"
	)

	TagExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_indexer_tag_extraction_duration_seconds",
			Help:    "Tag extraction duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

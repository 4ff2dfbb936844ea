// Package metrics defines the Prometheus instrumentation for the
// media indexer: HTTP serving, store queries, indexing runs and the
// read cache. Metrics are registered with promauto at package load;
// InitializeMetrics pre-populates known label combinations so every
// series is present from the first scrape.
package metrics

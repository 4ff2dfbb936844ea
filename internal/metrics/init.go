package metrics

// InitializeMetrics pre-populates the expected label combinations so
// that every series is exported from the first Prometheus scrape.
// Call once at startup.
func InitializeMetrics() {
	for _, outcome := range []string{"created", "updated", "unchanged", "failed"} {
		IndexFilesProcessed.WithLabelValues(outcome)
	}

	for _, reason := range []string{"not-mounted", "not-a-directory", "permission-denied", "timeout"} {
		IndexVolumesSkipped.WithLabelValues(reason)
	}

	for _, result := range []string{"hit", "miss", "coalesced"} {
		CacheRequestsTotal.WithLabelValues(result)
	}
	for _, cause := range []string{"ttl", "capacity", "flush"} {
		CacheEvictionsTotal.WithLabelValues(cause)
	}

	for _, status := range []string{"ok", "empty", "error"} {
		TagExtractionsTotal.WithLabelValues(status)
	}

	storeOps := []string{
		"initialize_schema", "upsert_model", "upsert_content", "touch_content",
		"upsert_mapping", "get_content_meta", "get_content_by_path",
		"list_page", "count_all",
		"truncate", "verify_integrity",
	}
	for _, op := range storeOps {
		StoreQueryTotal.WithLabelValues(op, "success")
		StoreQueryTotal.WithLabelValues(op, "error")
		StoreQueryDuration.WithLabelValues(op)
	}

	for _, result := range []string{"commit", "rollback"} {
		StoreTransactionDuration.WithLabelValues(result)
	}
}

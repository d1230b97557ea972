package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, op := range []string{"find_content", "find_playlist", "list_playlists", "list_content", "ping"} {
		StoreQueryTotal.WithLabelValues(op, "success")
		StoreQueryTotal.WithLabelValues(op, "error")
		StoreQueryTotal.WithLabelValues(op, "not_found")
		StoreQueryDuration.WithLabelValues(op)
	}

	for _, o := range []string{"found", "not_found", "bad_request", "error"} {
		ContentResolutionsTotal.WithLabelValues(o)
		PlaylistLookupsTotal.WithLabelValues(o)
	}

	for _, o := range []string{"success", "not_found", "rejected", "error"} {
		AssetOpensTotal.WithLabelValues(o)
	}

	for _, s := range []string{"complete", "client_gone", "error"} {
		DownloadsTotal.WithLabelValues(s)
	}

	for _, s := range []string{"success", "error"} {
		AuditRunsTotal.WithLabelValues(s)
	}

	for _, t := range []string{"none", "sound", "video"} {
		CatalogContent.WithLabelValues(t)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}
}

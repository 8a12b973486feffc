package metrics

// InitializeMetrics pre-populates the expected label combinations so every
// series is exported from the first scrape. Call once at startup.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		ScanRunsTotal.WithLabelValues(status)
		ProbeTotal.WithLabelValues(status)
		for _, src := range []string{"video", "image"} {
			PreviewGenerationsTotal.WithLabelValues(src, status)
		}
	}

	for _, change := range []string{"added", "removed"} {
		ScanEntriesChanged.WithLabelValues(change)
	}
	for _, stage := range []string{"probe", "preview", "stat"} {
		DegradedAssetsTotal.WithLabelValues(stage)
	}
	for _, kind := range []string{"preview", "source"} {
		CleanupFailuresTotal.WithLabelValues(kind)
	}

	for _, op := range []string{"scan", "update", "delete", "ingest", "replace_preview"} {
		OperationsTotal.WithLabelValues(op, "success")
		OperationsTotal.WithLabelValues(op, "error")
	}

	for _, backend := range []string{"json", "sqlite"} {
		for _, op := range []string{"load", "save"} {
			StoreOperationsTotal.WithLabelValues(backend, op, "success")
			StoreOperationsTotal.WithLabelValues(backend, op, "error")
			StoreOperationDuration.WithLabelValues(backend, op)
		}
	}

	for _, result := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(result)
	}

	volumes := []string{"watched", "previews", "catalog", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open", "remove"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}

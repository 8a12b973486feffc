// Package metrics provides Prometheus instrumentation for the movie catalog.
//
// All metrics are prefixed with "movie_catalog_" and registered through
// promauto at package init. They are served on a dedicated port by main.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests.
//   - Scan: reconciliation runs, duration, added and removed entries,
//     degraded assets per stage and failed best-effort cleanups.
//   - Catalog: operation outcomes plus entry/size/duration/rating gauges kept
//     current by a Collector.
//   - External tools: ffprobe and preview generation outcomes and durations.
//   - Store: load and save outcomes per backend.
//   - Filesystem: operation latency and ESTALE retry behaviour per volume,
//     recorded through the filesystem.Observer implementation.
//
// Call InitializeMetrics once at startup so every labelled series is
// exported from the first scrape.
package metrics

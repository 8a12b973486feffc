// Package main provides the entry point for the movie catalog server.
//
// The server keeps a catalog of the movie files under a watched directory.
// Each scan reconciles the directory tree against the stored catalog:
// new files are probed with ffprobe and get a preview frame rendered with
// ffmpeg, entries whose files disappeared are dropped together with their
// previews, and user edits to existing entries are preserved.
//
// # Application Lifecycle
//
//  1. Configuration Loading: GOMEMLIMIT from MEMORY_LIMIT (see package
//     memory), then defaults, optional CONFIG_FILE, environment
//  2. Directory Setup: watch, preview and catalog directories are created
//     and checked for write access
//  3. Catalog Initialization: the JSON document or SQLite database is
//     opened and loaded (an existing JSON document seeds an empty database)
//  4. Initial Scan: runs in the background; /readyz answers 503 until done.
//     New files are derived on SCAN_WORKERS workers, paused while the heap
//     is near the memory limit
//  5. HTTP Server Setup: routes, access log and metrics middleware
//  6. Graceful Shutdown: SIGINT/SIGTERM cancel the scan, drain requests and
//     close the catalog store
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - JSON API under /api for listing, searching, editing, deleting and
//       ingesting movies, replacing previews, stats and playback URLs
//     - Preview images under /previews/
//     - Movie files under the served directory for playback
//     - Health endpoints /health, /livez, /readyz and /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Liveness endpoint (/health)
//
// See package startup for the configuration variables.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips. ffprobe and ffmpeg must be on
// PATH (or set with FFPROBE_PATH and FFMPEG_PATH); without them movies are
// still cataloged with unknown duration and no preview.
//
//	go build -o movie-catalog ./cmd/movie-catalog
package main

// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read with viper from built-in defaults, an optional file
// named by CONFIG_FILE (YAML, TOML or JSON, keys in snake_case) and
// environment variables, which take precedence:
//
//   - WATCH_DIR: Directory tree reconciled into the catalog (default: web/movies)
//   - SERVE_DIR: Web root for playback URLs (default: parent of WATCH_DIR)
//   - PREVIEW_DIR: Preview image store (default: web/thumbnails)
//   - CATALOG_BACKEND: json or sqlite (default: json)
//   - CATALOG_PATH: Catalog file (default: movies.json, or movies.db for sqlite)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - PATH_CASE_FOLD: auto, true or false (default: auto)
//   - FFPROBE_PATH, FFMPEG_PATH: Media tool binaries (default: looked up on PATH)
//   - PREVIEW_USE_VIPS: Decode replacement preview images with libvips (default: false)
//   - SCAN_WORKERS: New files probed in parallel (default: 1.5 per CPU, at most 4)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// [PrepareDirectories] creates the watch, preview and catalog directories
// and fails unless the preview and catalog directories are writable.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	startup.LogCatalogInit(store.Name(), svc.Len(), time.Since(start))
//	startup.LogToolsInit(config.FFprobePath, config.FFmpegPath)
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup

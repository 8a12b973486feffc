package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"movie-catalog/internal/logging"
	"movie-catalog/internal/pathmatch"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Catalog backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	WatchDir       string
	ServeDir       string
	PreviewDir     string
	CatalogPath    string
	CatalogBackend string

	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	PathCaseFold string
	Paths        pathmatch.Policy

	FFprobePath    string
	FFmpegPath     string
	PreviewUseVips bool

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("watch_dir", "web/movies")
	v.SetDefault("serve_dir", "")
	v.SetDefault("preview_dir", "web/thumbnails")
	v.SetDefault("catalog_path", "")
	v.SetDefault("catalog_backend", BackendJSON)
	v.SetDefault("port", "8080")
	v.SetDefault("metrics_port", "9090")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("log_static_files", false)
	v.SetDefault("log_health_checks", true)
	v.SetDefault("path_case_fold", "auto")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("preview_use_vips", false)
	v.AutomaticEnv()
	return v
}

// ReadConfig reads configuration from defaults, the optional CONFIG_FILE
// and environment variables, in increasing order of precedence. It has no
// side effects on the filesystem.
func ReadConfig() (*Config, error) {
	v := newViper()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("catalog_backend")))
	if backend != BackendJSON && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid CATALOG_BACKEND %q (want json or sqlite)", backend)
	}

	paths, err := pathmatch.ParsePolicy(v.GetString("path_case_fold"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		WatchDir:        v.GetString("watch_dir"),
		ServeDir:        v.GetString("serve_dir"),
		PreviewDir:      v.GetString("preview_dir"),
		CatalogPath:     v.GetString("catalog_path"),
		CatalogBackend:  backend,
		Port:            v.GetString("port"),
		MetricsPort:     v.GetString("metrics_port"),
		MetricsEnabled:  v.GetBool("metrics_enabled"),
		LogStaticFiles:  v.GetBool("log_static_files"),
		LogHealthChecks: v.GetBool("log_health_checks"),
		PathCaseFold:    v.GetString("path_case_fold"),
		Paths:           paths,
		FFprobePath:     v.GetString("ffprobe_path"),
		FFmpegPath:      v.GetString("ffmpeg_path"),
		PreviewUseVips:  v.GetBool("preview_use_vips"),
		ConfigFile:      configFile,
	}

	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "movies.json"
		if backend == BackendSQLite {
			cfg.CatalogPath = "movies.db"
		}
	}

	if cfg.WatchDir, err = filepath.Abs(cfg.WatchDir); err != nil {
		return nil, fmt.Errorf("failed to resolve watch directory path: %w", err)
	}
	if cfg.ServeDir == "" {
		cfg.ServeDir = filepath.Dir(cfg.WatchDir)
	}
	if cfg.ServeDir, err = filepath.Abs(cfg.ServeDir); err != nil {
		return nil, fmt.Errorf("failed to resolve serve directory path: %w", err)
	}
	if cfg.PreviewDir, err = filepath.Abs(cfg.PreviewDir); err != nil {
		return nil, fmt.Errorf("failed to resolve preview directory path: %w", err)
	}
	if cfg.CatalogPath, err = filepath.Abs(cfg.CatalogPath); err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	return cfg, nil
}

// LoadConfig prints the banner, reads the configuration and prepares the
// directories it names.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if cfg.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:         %s", cfg.ConfigFile)
	}
	logging.Info("  WATCH_DIR:           %s", cfg.WatchDir)
	logging.Info("  SERVE_DIR:           %s", cfg.ServeDir)
	logging.Info("  PREVIEW_DIR:         %s", cfg.PreviewDir)
	logging.Info("  CATALOG_PATH:        %s", cfg.CatalogPath)
	logging.Info("  CATALOG_BACKEND:     %s", cfg.CatalogBackend)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  PATH_CASE_FOLD:      %s (fold=%v)", cfg.PathCaseFold, cfg.Paths.FoldCase)
	logging.Info("  FFPROBE_PATH:        %s", cfg.FFprobePath)
	logging.Info("  FFMPEG_PATH:         %s", cfg.FFmpegPath)
	logging.Info("  PREVIEW_USE_VIPS:    %v", cfg.PreviewUseVips)
	logging.Info("  LOG_STATIC_FILES:    %v", cfg.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := PrepareDirectories(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PrepareDirectories creates the watched root and the preview and catalog
// directories, and checks that the latter two are writable.
func PrepareDirectories(cfg *Config) error {
	if err := ensureDirectory(cfg.WatchDir, "watch"); err != nil {
		return fmt.Errorf("watch directory error: %w", err)
	}
	logging.Info("  [OK] Watch directory: %s", cfg.WatchDir)

	if err := ensureDirectory(cfg.PreviewDir, "preview"); err != nil {
		return fmt.Errorf("preview directory error: %w", err)
	}
	if err := testWriteAccess(cfg.PreviewDir); err != nil {
		return fmt.Errorf("preview directory is not writable: %w", err)
	}
	logging.Info("  [OK] Preview directory is writable")

	catalogDir := filepath.Dir(cfg.CatalogPath)
	if err := ensureDirectory(catalogDir, "catalog"); err != nil {
		return fmt.Errorf("catalog directory error: %w", err)
	}
	if err := testWriteAccess(catalogDir); err != nil {
		return fmt.Errorf("catalog directory is not writable: %w", err)
	}
	logging.Info("  [OK] Catalog directory is writable")

	if rel, err := filepath.Rel(cfg.ServeDir, cfg.WatchDir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logging.Warn("  Watch directory is outside SERVE_DIR; playback URLs will not resolve")
	}
	return nil
}

// LogCatalogInit logs catalog loading
func LogCatalogInit(backend string, entries int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOG INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Backend: %s", backend)
	logging.Info("  [OK] %d movies loaded in %v", entries, duration)
}

// LogToolsInit checks the external media tools. Both are optional: without
// them new movies are cataloged with degraded metadata and no preview.
func LogToolsInit(ffprobePath, ffmpegPath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEDIA TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []struct{ name, path string }{
		{"ffprobe", ffprobePath},
		{"ffmpeg", ffmpegPath},
	} {
		if err := checkTool(tool.path); err != nil {
			logging.Warn("  %s check failed: %v", tool.name, err)
			logging.Warn("  New movies will be cataloged without %s output", tool.name)
			continue
		}
		logging.Info("  [OK] %s is available", tool.name)
	}
}

// LogInitialScan logs the result of the startup scan
func LogInitialScan(total, added, removed int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INITIAL SCAN")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %d movies (%d added, %d removed) in %v", total, added, removed, duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// Prefix-only routes (static file servers) have no template.
			pathTemplate, err = route.GetPathRegexp()
			if err != nil {
				return err
			}
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___          _         ______      __        __
   /  |/  /___ _   _(_)__     / ____/___ _/ /_____ _/ /___  ____ _
  / /|_/ / __ \ | / / / _ \   / /   / __ '/ __/ __ '/ / __ \/ __ '/
 / /  / / /_/ / |/ / /  __/  / /___/ /_/ / /_/ /_/ / / /_/ / /_/ /
/_/  /_/\____/|___/_/\___/   \____/\__,_/\__/\__,_/_/\____/\__, /
                                                          /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkTool(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  %s path: %s", binary, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", binary, err)
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		logging.Debug("  %s version: %s", binary, strings.TrimSpace(first))
	}
	return nil
}

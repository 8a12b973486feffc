package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/handlers"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/media"
	"movie-catalog/internal/memory"
	"movie-catalog/internal/metrics"
	"movie-catalog/internal/middleware"
	"movie-catalog/internal/startup"

	"github.com/gorilla/mux"
)

const (
	collectorInterval = time.Minute
	shutdownTimeout   = 30 * time.Second
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	if config.PreviewUseVips {
		media.InitVips()
	}

	// Open the catalog
	store, err := startup.OpenStore(context.Background(), config)
	if err != nil {
		startup.LogFatal("Failed to open %s catalog: %v", config.CatalogBackend, err)
	}

	// Pauses scan derivation while the heap is near the memory limit.
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	svc, err := startup.NewCatalog(config, store, monitor)
	if err != nil {
		startup.LogFatal("Failed to initialize catalog: %v", err)
	}
	startup.LogToolsInit(config.FFprobePath, config.FFmpegPath)

	h := handlers.New(svc)

	// The initial scan runs in the background; /readyz reports 503 until it
	// finishes.
	scanCtx, cancelScan := context.WithCancel(context.Background())
	go func() {
		scanStart := time.Now()
		report, err := h.InitialScan(scanCtx)
		if err == nil {
			startup.LogInitialScan(report.Total, report.Added, report.Removed, time.Since(scanStart))
		}
	}()

	collector := metrics.NewCollector(h, collectorInterval)
	collector.Start()

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Movie downloads can take arbitrarily long.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, monitor, cancelScan, store)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

// shutdownDone is closed once handleShutdown has released every resource.
var shutdownDone = make(chan struct{})

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	h.RegisterRoutes(r)
	// File routes match every remaining path, so they go last.
	h.RegisterFileRoutes(r)

	return r
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, monitor *memory.Monitor,
	cancelScan context.CancelFunc, store catalog.Store,
) {
	defer close(shutdownDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Cancels an in-flight ffprobe/ffmpeg run of the initial scan so
	// requests waiting on the catalog can drain.
	cancelScan()
	monitor.Stop()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Closing catalog store")
	if err := store.Close(); err != nil {
		logging.Warn("Catalog store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Catalog store closed")
	}

	media.ShutdownVips()

	startup.LogShutdownComplete()
}

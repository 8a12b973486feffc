package handlers

import (
	"net/http"
	"runtime"
	"time"

	"movie-catalog/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Ready         bool   `json:"ready"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	Scanning      bool   `json:"scanning"`
	LastScan      string `json:"lastScan,omitempty"`
	LastScanError string `json:"lastScanError,omitempty"`
	Movies        int64  `json:"movies"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. It never waits for
// the catalog lock, so it answers during a long scan.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.stateMu.RLock()
	lastScan, lastScanError := h.lastScan, h.lastScanError
	h.stateMu.RUnlock()

	response := HealthResponse{
		Ready:         h.IsReady(),
		Version:       startup.Version,
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
		Scanning:      h.scanning.Load(),
		LastScanError: lastScanError,
		Movies:        h.movies.Load(),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}

	switch {
	case !response.Ready:
		response.Status = statusStarting
	case lastScanError != "":
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	if !lastScan.IsZero() {
		response.LastScan = lastScan.Format(time.RFC3339)
	}

	statusCode := http.StatusOK
	// Return 503 only if not ready at all
	if !response.Ready {
		statusCode = http.StatusServiceUnavailable
	}
	respond(w, statusCode, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once the initial scan has finished.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.IsReady() {
		respond(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	respond(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}

package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Handlers serves the catalog over HTTP. Every catalog call goes through
// withCatalog, which holds mu for its duration.
type Handlers struct {
	mu      sync.Mutex
	catalog *catalog.Service

	startTime time.Time
	ready     atomic.Bool
	scanning  atomic.Bool
	movies    atomic.Int64

	stateMu       sync.RWMutex
	lastScan      time.Time
	lastScanError string
}

func New(svc *catalog.Service) *Handlers {
	h := &Handlers{
		catalog:   svc,
		startTime: time.Now(),
	}
	h.movies.Store(int64(svc.Len()))
	return h
}

func (h *Handlers) withCatalog(fn func(svc *catalog.Service) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := fn(h.catalog)
	h.movies.Store(int64(h.catalog.Len()))
	return err
}

// Scan reconciles the watched directory and records the outcome for the
// health endpoints.
func (h *Handlers) Scan(ctx context.Context) (catalog.ScanReport, error) {
	var report catalog.ScanReport
	err := h.withCatalog(func(svc *catalog.Service) error {
		h.scanning.Store(true)
		defer h.scanning.Store(false)

		var err error
		report, err = svc.Scan(ctx)
		return err
	})

	h.stateMu.Lock()
	h.lastScan = time.Now()
	h.lastScanError = ""
	if err != nil {
		h.lastScanError = err.Error()
	}
	h.stateMu.Unlock()

	return report, err
}

// InitialScan runs the startup scan and marks the service ready whether or
// not it succeeded; a failure is reported as degraded health.
func (h *Handlers) InitialScan(ctx context.Context) (catalog.ScanReport, error) {
	defer h.ready.Store(true)

	report, err := h.Scan(ctx)
	if err != nil {
		logging.Error("Initial scan failed: %v", err)
	}
	return report, err
}

// IsReady reports whether the initial scan has finished.
func (h *Handlers) IsReady() bool {
	return h.ready.Load()
}

// GetStats implements metrics.StatsProvider.
func (h *Handlers) GetStats() metrics.Stats {
	var st catalog.Stats
	_ = h.withCatalog(func(svc *catalog.Service) error {
		st = svc.Stats()
		return nil
	})
	return metrics.Stats{
		Entries:              st.TotalMovies,
		TotalSizeBytes:       st.TotalSize,
		TotalDurationSeconds: st.TotalDuration,
		AverageRating:        st.AverageRating,
	}
}

var _ metrics.StatsProvider = (*Handlers)(nil)

package memory

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Config sets the thresholds of a Monitor.
type Config struct {
	// LimitBytes is the limit usage is measured against. Zero uses the Go
	// memory limit, if any.
	LimitBytes int64
	// PauseAt and ResumeAt are fractions of the limit. Derivation pauses at
	// or above PauseAt and resumes below ResumeAt.
	PauseAt  float64
	ResumeAt float64
	// CheckInterval is how often heap usage is sampled.
	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the server.
func DefaultConfig() Config {
	return Config{
		PauseAt:       0.85,
		ResumeAt:      0.7,
		CheckInterval: 5 * time.Second,
	}
}

// Monitor samples heap usage and pauses scan derivation while it is above
// the pause threshold. It implements catalog.Throttle.
type Monitor struct {
	config Config
	limit  int64

	stop     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	alloc   uint64
	paused  bool
	resumed chan struct{}

	readAlloc func() uint64
}

// NewMonitor creates a Monitor. Without any limit it never pauses.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit configured, scans are never paused")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		stop:      make(chan struct{}),
		resumed:   make(chan struct{}),
		readAlloc: heapAlloc,
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start samples usage in the background until Stop.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends sampling and releases every waiter with false.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) check() {
	alloc := m.readAlloc()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alloc = alloc

	switch {
	case !m.paused && usage >= m.config.PauseAt:
		logging.Warn("Memory at %.1f%% of limit, pausing scan derivation", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.ResumeAt:
		logging.Info("Memory back to %.1f%% of limit, resuming scan derivation", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumed)
		m.resumed = make(chan struct{})
	}
}

// WaitIfPaused blocks while usage is above the pause threshold. It returns
// false if the monitor is stopped first.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.paused {
		m.mu.RUnlock()
		return true
	}
	resumed := m.resumed
	m.mu.RUnlock()

	select {
	case <-resumed:
		return true
	case <-m.stop:
		return false
	}
}

// IsPaused reports whether derivation is currently paused.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Stats returns the last sampled heap allocation, the limit and their ratio.
func (m *Monitor) Stats() (alloc uint64, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.limit > 0 {
		usage = float64(m.alloc) / float64(m.limit)
	}
	return m.alloc, m.limit, usage
}

package metrics

import (
	"time"

	"movie-catalog/internal/logging"
)

// StatsProvider supplies catalog totals for the gauges.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the catalog totals exported as gauges.
type Stats struct {
	Entries              int
	TotalSizeBytes       int64
	TotalDurationSeconds int64
	AverageRating        float64
}

// Collector periodically copies catalog totals into the gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop ends the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogEntries.Set(float64(stats.Entries))
	CatalogSizeBytes.Set(float64(stats.TotalSizeBytes))
	CatalogDurationSeconds.Set(float64(stats.TotalDurationSeconds))
	CatalogAverageRating.Set(stats.AverageRating)

	logging.Debug("Metrics collected: entries=%d, size=%d, duration=%ds, rating=%.1f",
		stats.Entries, stats.TotalSizeBytes, stats.TotalDurationSeconds, stats.AverageRating)
}

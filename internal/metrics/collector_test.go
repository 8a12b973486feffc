package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStatsProvider struct {
	stats Stats
}

func (f *fakeStatsProvider) GetStats() Stats {
	return f.stats
}

func TestNewCollector(t *testing.T) {
	provider := &fakeStatsProvider{}
	c := NewCollector(provider, time.Minute)

	if c.statsProvider != provider {
		t.Error("statsProvider not set")
	}
	if c.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", c.interval)
	}
	if c.stopChan == nil {
		t.Error("stopChan is nil")
	}
}

func TestCollectUpdatesGauges(t *testing.T) {
	provider := &fakeStatsProvider{stats: Stats{
		Entries:              3,
		TotalSizeBytes:       4096,
		TotalDurationSeconds: 7200,
		AverageRating:        7.5,
	}}

	NewCollector(provider, time.Minute).collect()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"CatalogEntries", testutil.ToFloat64(CatalogEntries), 3},
		{"CatalogSizeBytes", testutil.ToFloat64(CatalogSizeBytes), 4096},
		{"CatalogDurationSeconds", testutil.ToFloat64(CatalogDurationSeconds), 7200},
		{"CatalogAverageRating", testutil.ToFloat64(CatalogAverageRating), 7.5},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollectWithNilProvider(_ *testing.T) {
	NewCollector(nil, time.Minute).collect()
}

func TestCollectorStartStop(_ *testing.T) {
	c := NewCollector(&fakeStatsProvider{}, 10*time.Millisecond)
	c.Start()
	time.Sleep(25 * time.Millisecond)
	c.Stop()
}

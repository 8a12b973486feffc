package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"ScanRunsTotal", ScanRunsTotal},
		{"ScanDuration", ScanDuration},
		{"ScanEntriesChanged", ScanEntriesChanged},
		{"DegradedAssetsTotal", DegradedAssetsTotal},
		{"CleanupFailuresTotal", CleanupFailuresTotal},
		{"OperationsTotal", OperationsTotal},
		{"ProbeTotal", ProbeTotal},
		{"PreviewGenerationsTotal", PreviewGenerationsTotal},
		{"StoreOperationsTotal", StoreOperationsTotal},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if got := testutil.CollectAndCount(OperationsTotal); got < 10 {
		t.Errorf("OperationsTotal series = %d, want at least 10", got)
	}
	if got := testutil.CollectAndCount(StoreOperationsTotal); got != 8 {
		t.Errorf("StoreOperationsTotal series = %d, want 8", got)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("watched", "stat"))
	obs.ObserveOperation("watched", "stat", 0.001, errors.New("boom"))
	obs.ObserveOperation("watched", "stat", 0.001, nil)
	after := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("watched", "stat"))
	if after-before != 1 {
		t.Errorf("FilesystemOperationErrors delta = %v, want 1", after-before)
	}

	before = testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "previews"))
	obs.ObserveStaleError("open", "previews")
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "previews")); got-before != 1 {
		t.Errorf("FilesystemStaleErrors delta = %v, want 1", got-before)
	}
}

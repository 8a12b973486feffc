package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-catalog/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	metrics.InitializeMetrics()
	h := &Handlers{}

	w := httptest.NewRecorder()
	h.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"movie_catalog_scan_runs_total", "promhttp_metric_handler_requests_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape is missing %s", want)
		}
	}
}

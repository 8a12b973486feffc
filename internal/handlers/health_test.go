package handlers

import (
	"context"
	"net/http"
	"os"
	"testing"
)

func TestHealthCheck_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.addMovie(t, "A.mkv")

	w := ts.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("before initial scan: status = %d, want 503", w.Code)
	}
	if resp := decode[HealthResponse](t, w); resp.Status != statusStarting || resp.Ready {
		t.Errorf("before initial scan: %+v", resp)
	}

	if _, err := ts.h.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	w = ts.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[HealthResponse](t, w)
	if resp.Status != statusHealthy || !resp.Ready || resp.Movies != 1 || resp.LastScan == "" || resp.Scanning {
		t.Errorf("after initial scan: %+v", resp)
	}
}

func TestHealthCheck_DegradedAfterFailedScan(t *testing.T) {
	ts := newTestServer(t)
	if err := os.RemoveAll(ts.watched); err != nil {
		t.Fatal(err)
	}

	if _, err := ts.h.InitialScan(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
	if !ts.h.IsReady() {
		t.Error("a failed initial scan must still mark the service ready")
	}

	resp := decode[HealthResponse](t, ts.do(t, http.MethodGet, "/health", nil))
	if resp.Status != statusDegraded || resp.LastScanError == "" {
		t.Errorf("health = %+v", resp)
	}
}

func TestReadinessCheck(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodGet, "/readyz", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("not ready: status = %d", w.Code)
	}
	ts.h.ready.Store(true)
	w := ts.do(t, http.MethodGet, "/readyz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ready: status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w); got["status"] != "ready" {
		t.Errorf("body = %v", got)
	}
}

func TestLivenessCheck(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method   string
		wantBody bool
	}{
		{http.MethodGet, true},
		{http.MethodHead, false},
	}
	for _, tt := range tests {
		w := ts.do(t, tt.method, "/livez", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", tt.method, w.Code)
		}
		if (w.Body.Len() > 0) != tt.wantBody {
			t.Errorf("%s body = %q", tt.method, w.Body)
		}
	}
}

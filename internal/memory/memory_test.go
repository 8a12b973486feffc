package memory

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestMonitor(alloc *atomic.Uint64) *Monitor {
	m := NewMonitor(Config{LimitBytes: 1000, PauseAt: 0.85, ResumeAt: 0.7, CheckInterval: time.Millisecond})
	m.readAlloc = alloc.Load
	return m
}

func TestMonitor_PauseAndResume(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(&alloc)

	steps := []struct {
		alloc  uint64
		paused bool
	}{
		{500, false},
		{900, true},
		// Between the thresholds the state holds.
		{800, true},
		{600, false},
		{800, false},
	}
	for _, s := range steps {
		alloc.Store(s.alloc)
		m.check()
		if m.IsPaused() != s.paused {
			t.Fatalf("alloc %d: paused = %v, want %v", s.alloc, m.IsPaused(), s.paused)
		}
	}

	gotAlloc, limit, usage := m.Stats()
	if gotAlloc != 800 || limit != 1000 || usage != 0.8 {
		t.Errorf("Stats() = %d %d %v", gotAlloc, limit, usage)
	}
}

func TestMonitor_WaitIfPaused(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(&alloc)

	if !m.WaitIfPaused() {
		t.Fatal("WaitIfPaused() = false while not paused")
	}

	alloc.Store(950)
	m.check()

	done := make(chan bool)
	go func() { done <- m.WaitIfPaused() }()

	select {
	case <-done:
		t.Fatal("WaitIfPaused() returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	alloc.Store(100)
	m.check()
	select {
	case ok := <-done:
		if !ok {
			t.Error("WaitIfPaused() = false after resume")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused() did not return after resume")
	}
}

func TestMonitor_StopReleasesWaiters(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(&alloc)
	alloc.Store(999)
	m.check()

	done := make(chan bool)
	go func() { done <- m.WaitIfPaused() }()
	m.Stop()
	m.Stop()

	select {
	case ok := <-done:
		if ok {
			t.Error("WaitIfPaused() = true after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not release the waiter")
	}
}

func TestMonitor_StartSamples(t *testing.T) {
	var alloc atomic.Uint64
	alloc.Store(990)
	m := newTestMonitor(&alloc)
	m.Start()
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for !m.IsPaused() {
		if time.Now().After(deadline) {
			t.Fatal("monitor never sampled")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.ResumeAt >= c.PauseAt || c.PauseAt > 1 || c.CheckInterval <= 0 {
		t.Errorf("DefaultConfig() = %+v", c)
	}
}

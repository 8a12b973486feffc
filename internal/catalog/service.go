package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/pathmatch"
	"movie-catalog/internal/probe"
	"movie-catalog/internal/workers"

	"github.com/google/uuid"
)

// Previewer renders preview images into the preview store.
type Previewer interface {
	FromVideo(ctx context.Context, src, dst string, durationSeconds int64) error
	FromImage(ctx context.Context, src, dst string) error
}

// Throttle pauses scan derivation under resource pressure. WaitIfPaused
// blocks while work should wait and returns false once it must stop.
type Throttle interface {
	WaitIfPaused() bool
}

// Options configures a Service.
type Options struct {
	// WatchedDir is the tree reconciled by Scan and the ingest destination.
	WatchedDir string
	// PreviewDir holds the preview assets referenced by entries.
	PreviewDir string
	// ServedDir is the web root playback URLs are relative to.
	ServedDir string

	Store     Store
	Prober    probe.Prober
	Previewer Previewer
	Paths     pathmatch.Policy
	Retry     filesystem.RetryConfig

	// Workers bounds how many new files are probed at once. Zero picks a
	// count from the available CPUs.
	Workers int
	// Throttle is consulted before each new file is handed to a worker.
	Throttle Throttle

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Service owns the in-memory catalog. It performs no locking: callers must
// serialize every call.
type Service struct {
	watchedDir string
	previewDir string
	servedDir  string

	store     Store
	prober    probe.Prober
	previewer Previewer
	paths     pathmatch.Policy
	retry     filesystem.RetryConfig
	workers   int
	throttle  Throttle
	now       func() time.Time
	newID     func() string

	entries []Entry
}

// maxScanWorkers caps the default worker count; each worker may run an
// ffprobe and an ffmpeg process.
const maxScanWorkers = 4

// New creates a Service. Call Load before using it.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("catalog: store is required")
	}
	if opts.Prober == nil || opts.Previewer == nil {
		return nil, fmt.Errorf("catalog: prober and previewer are required")
	}

	watched, err := absDir(opts.WatchedDir, "watched")
	if err != nil {
		return nil, err
	}
	previews, err := absDir(opts.PreviewDir, "preview")
	if err != nil {
		return nil, err
	}
	served := opts.ServedDir
	if served == "" {
		served = filepath.Dir(watched)
	}
	if served, err = absDir(served, "served"); err != nil {
		return nil, err
	}

	s := &Service{
		watchedDir: watched,
		previewDir: previews,
		servedDir:  served,
		store:      opts.Store,
		prober:     opts.Prober,
		previewer:  opts.Previewer,
		paths:      opts.Paths,
		retry:      opts.Retry,
		workers:    opts.Workers,
		throttle:   opts.Throttle,
		now:        opts.Now,
		newID:      opts.NewID,
		entries:    []Entry{},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.workers <= 0 {
		s.workers = workers.ForMixed(maxScanWorkers)
	}
	if s.retry.MaxRetries == 0 && s.retry.InitialBackoff == 0 {
		s.retry = filesystem.DefaultRetryConfig()
	}
	return s, nil
}

func absDir(dir, what string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("catalog: %s directory is required", what)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("catalog: resolve %s directory: %w", what, err)
	}
	return abs, nil
}

// Load replaces the in-memory catalog with the stored one.
func (s *Service) Load() {
	s.entries = s.store.Load()
	logging.Info("Catalog loaded from %s store: %d entries", s.store.Name(), len(s.entries))
}

// WatchedDir returns the absolute watched root.
func (s *Service) WatchedDir() string { return s.watchedDir }

// PreviewDir returns the absolute preview store directory.
func (s *Service) PreviewDir() string { return s.previewDir }

// ServedDir returns the absolute web root.
func (s *Service) ServedDir() string { return s.servedDir }

// Entries returns a copy of the current catalog.
func (s *Service) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries.
func (s *Service) Len() int { return len(s.entries) }

func (s *Service) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persist() error {
	if err := s.store.Save(s.entries); err != nil {
		return fmt.Errorf("%w: save catalog: %v", ErrEnvironment, err)
	}
	return nil
}

// previewPath resolves an asset name inside the preview store. Only the
// base name is used so a stored reference can never point elsewhere.
func (s *Service) previewPath(name string) string {
	return filepath.Join(s.previewDir, filepath.Base(name))
}

// previewExt matches the JPEG encoding of every generated preview.
const previewExt = ".jpg"

// newAssetName returns a fresh preview file name.
func (s *Service) newAssetName(ext string) string {
	return strings.ReplaceAll(s.newID(), "-", "") + ext
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/mediatypes"
	"movie-catalog/internal/metrics"
	"movie-catalog/internal/probe"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Entries is the new catalog: carried-forward entries and new ones, in
	// walk order.
	Entries []Entry
	Added   []Entry
	Removed []Entry
	// Cleanup lists preview assets of removed entries.
	Cleanup []CleanupAction
	// Degraded holds per-file failures, each wrapping ErrDegradedAsset.
	Degraded []error
}

// Reconcile walks root and matches every supported file against current
// by canonical path key. Matched entries are carried forward untouched,
// unmatched files become new entries and whatever is left unmatched in
// current is reported as removed. Reconcile does not persist anything; it
// only creates preview assets for new entries.
//
// Per-file failures degrade that file's derived fields and never abort the
// pass. Failing to enumerate root itself returns ErrEnvironment.
func (s *Service) Reconcile(ctx context.Context, current []Entry, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: watched root %s: %v", ErrEnvironment, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: watched root %s is not a directory", ErrEnvironment, root)
	}

	res := &Result{}
	// Indexes into res.Entries of files seen for the first time.
	var pending []int

	// Index by key. Slot order keeps removal reporting deterministic.
	index := make(map[string]int, len(current))
	slots := make([]*Entry, len(current))
	for i := range current {
		e := current[i]
		key := s.paths.Key(e.SourcePath)
		if prev, dup := index[key]; dup {
			// Two entries for one file: keep the first, drop the other.
			logging.Warn("Duplicate catalog entries for %s (%s, %s), dropping %s",
				e.SourcePath, slots[prev].ID, e.ID, e.ID)
			res.Removed = append(res.Removed, e)
			continue
		}
		index[key] = i
		slots[i] = &e
	}

	// Keys emitted by this pass, mapped to the file that claimed them.
	seen := make(map[string]string)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !mediatypes.IsVideoFile(path) || !isRegular(path, d) {
			return nil
		}

		key := s.paths.Key(path)
		if first, dup := seen[key]; dup {
			logging.Warn("Skipping %s: same catalog key as %s", path, first)
			return nil
		}
		seen[key] = path

		if i, ok := index[key]; ok {
			delete(index, key)
			res.Entries = append(res.Entries, *slots[i])
			slots[i] = nil
			return nil
		}

		pending = append(pending, len(res.Entries))
		res.Entries = append(res.Entries, s.newEntry(path))
		return nil
	})
	if walkErr != nil {
		if isCancellation(walkErr) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("%w: walk %s: %v", ErrEnvironment, root, walkErr)
	}

	degraded, err := s.deriveAll(ctx, res.Entries, pending)
	for _, i := range pending {
		res.Added = append(res.Added, res.Entries[i])
	}
	if err != nil {
		s.discardPreviews(res.Added)
		return nil, err
	}
	res.Degraded = degraded

	for _, e := range slots {
		if e == nil {
			continue
		}
		res.Removed = append(res.Removed, *e)
	}
	// A dropped duplicate may share its preview with the entry that was kept.
	referenced := make(map[string]bool, len(res.Entries))
	for _, e := range res.Entries {
		if e.HasPreview() {
			referenced[*e.PreviewAsset] = true
		}
	}
	for _, e := range res.Removed {
		if e.HasPreview() && !referenced[*e.PreviewAsset] {
			referenced[*e.PreviewAsset] = true
			res.Cleanup = append(res.Cleanup, CleanupAction{Kind: CleanupPreview, Path: s.previewPath(*e.PreviewAsset)})
		}
	}

	if res.Entries == nil {
		res.Entries = []Entry{}
	}
	return res, nil
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// newEntry creates the entry for a file seen for the first time. Ids, the
// creation time and the preview asset name are assigned here, in walk
// order; deriveAll fills in the probed fields.
func (s *Service) newEntry(path string) Entry {
	logging.Info("New movie: %s", filepath.Base(path))

	title := DeriveTitle(path)
	rating := 0.0
	id := s.newID()
	asset := s.newAssetName(previewExt)
	return Entry{
		ID:             id,
		Title:          title,
		SourcePath:     filepath.Clean(path),
		Genre:          DefaultGenre,
		ReleaseYear:    ExtractYear(title),
		Rating:         &rating,
		Resolution:     Unknown,
		PreviewAsset:   &asset,
		Description:    DefaultDescription,
		CreatedAtEpoch: s.now().Unix(),
	}
}

// deriveAll probes, stats and renders previews for entries[pending] on a
// bounded pool of workers. Per-file failures are returned in pending order.
// It fails only when ctx is cancelled or the throttle stops the scan.
func (s *Service) deriveAll(ctx context.Context, entries []Entry, pending []int) ([]error, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	perFile := make([][]error, len(pending))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.workers, len(pending)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				// Each worker writes only its own slots.
				perFile[j] = s.derive(ctx, &entries[pending[j]])
			}
		}()
	}

	var err error
	for j := range pending {
		if err = ctx.Err(); err != nil {
			break
		}
		if s.throttle != nil && !s.throttle.WaitIfPaused() {
			err = fmt.Errorf("%w: scan stopped under memory pressure", ErrEnvironment)
			break
		}
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	var degraded []error
	for _, errs := range perFile {
		degraded = append(degraded, errs...)
	}
	return degraded, nil
}

// derive fills the probed fields of e. A failed stage leaves its fields at
// their defaults and is reported as a degraded asset.
func (s *Service) derive(ctx context.Context, e *Entry) []error {
	var degraded []error
	degrade := func(stage string, err error) {
		metrics.DegradedAssetsTotal.WithLabelValues(stage).Inc()
		logging.Warn("Degraded %s for %s: %v", stage, e.SourcePath, err)
		degraded = append(degraded, fmt.Errorf("%w: %s %s: %v", ErrDegradedAsset, stage, e.SourcePath, err))
	}

	meta, err := s.prober.Probe(ctx, e.SourcePath)
	if err != nil {
		degrade("probe", err)
		meta = probe.Result{}
	}
	e.DurationSeconds = meta.DurationSeconds
	e.Resolution = meta.Resolution()

	if err := s.previewer.FromVideo(ctx, e.SourcePath, s.previewPath(*e.PreviewAsset), meta.DurationSeconds); err != nil {
		degrade("preview", err)
		e.PreviewAsset = nil
	}

	if info, err := filesystem.StatWithRetry(e.SourcePath, s.retry); err != nil {
		degrade("stat", err)
	} else {
		e.SizeBytes = info.Size()
	}

	return degraded
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// discardPreviews removes previews created for entries that will not be
// committed.
func (s *Service) discardPreviews(entries []Entry) {
	var actions []CleanupAction
	for _, e := range entries {
		if e.HasPreview() {
			actions = append(actions, CleanupAction{Kind: CleanupPreview, Path: s.previewPath(*e.PreviewAsset)})
		}
	}
	runCleanup(actions, s.retry)
}

// ScanReport summarizes a committed scan.
type ScanReport struct {
	Total    int
	Added    int
	Removed  int
	Degraded []error
	// CleanupErrors lists preview deletions that failed after commit.
	CleanupErrors []error
}

// Scan reconciles the watched root against the catalog, persists the
// result and then deletes the previews of removed entries.
func (s *Service) Scan(ctx context.Context) (report ScanReport, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ScanRunsTotal.WithLabelValues(status).Inc()
		metrics.OperationsTotal.WithLabelValues("scan", status).Inc()
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	logging.Debug("Scan started: %s", s.watchedDir)

	res, err := s.Reconcile(ctx, s.entries, s.watchedDir)
	if err != nil {
		logging.Error("Scan failed: %v", err)
		return ScanReport{}, err
	}

	previous := s.entries
	s.entries = res.Entries
	if err := s.persist(); err != nil {
		s.entries = previous
		s.discardPreviews(res.Added)
		logging.Error("Scan not committed: %v", err)
		return ScanReport{}, err
	}

	for _, e := range res.Removed {
		logging.Info("Removed missing movie: %s", e.Title)
	}
	cleanupErrs := runCleanup(res.Cleanup, s.retry)

	metrics.ScanEntriesChanged.WithLabelValues("added").Add(float64(len(res.Added)))
	metrics.ScanEntriesChanged.WithLabelValues("removed").Add(float64(len(res.Removed)))
	metrics.ScanLastRunTimestamp.Set(float64(s.now().Unix()))

	logging.Info("Scan complete in %v: %d movies, %d added, %d removed, %d degraded",
		time.Since(start).Round(time.Millisecond), len(res.Entries), len(res.Added), len(res.Removed), len(res.Degraded))

	return ScanReport{
		Total:         len(res.Entries),
		Added:         len(res.Added),
		Removed:       len(res.Removed),
		Degraded:      res.Degraded,
		CleanupErrors: cleanupErrs,
	}, nil
}

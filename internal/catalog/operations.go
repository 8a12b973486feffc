package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/mediatypes"
	"movie-catalog/internal/metrics"
)

// maxIngestSuffix bounds the name_N search so a pathological directory
// cannot loop forever.
const maxIngestSuffix = 100000

// UpdateRequest carries the editable fields of an entry. Year and Rating are
// parsed here so malformed input is reported instead of silently defaulted.
type UpdateRequest struct {
	Title       string
	Genre       string
	Year        string
	// Rating is nil to keep the current rating, including no rating.
	Rating      *string
	Description string
}

func countOp(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.OperationsTotal.WithLabelValues(op, status).Inc()
}

// Get returns the entry with the given id.
func (s *Service) Get(id string) (Entry, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}
	return s.entries[i].clone(), nil
}

// List rescans the watched root and returns the resulting catalog.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	if _, err := s.Scan(ctx); err != nil {
		return nil, err
	}
	return s.Entries(), nil
}

// ParseYear validates a year typed by a user.
func ParseYear(value string) (Year, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: year %q is not a number", ErrValidation, value)
	}
	return Year(strconv.Itoa(n)), nil
}

// ParseRating validates a rating typed by a user. The 0-10 range is a
// convention of the UI and is not enforced.
func ParseRating(value string) (float64, error) {
	r, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: rating %q is not a number", ErrValidation, value)
	}
	return r, nil
}

// Update overwrites the editable fields of an entry and persists.
func (s *Service) Update(_ context.Context, id string, req UpdateRequest) (updated Entry, err error) {
	defer func() { countOp("update", err) }()

	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}

	year, err := ParseYear(req.Year)
	if err != nil {
		return Entry{}, err
	}
	previous := s.entries[i]
	e := previous.clone()
	if req.Rating != nil {
		rating, err := ParseRating(*req.Rating)
		if err != nil {
			return Entry{}, err
		}
		e.Rating = &rating
	}
	e.Title = req.Title
	e.Genre = req.Genre
	e.ReleaseYear = year
	e.Description = req.Description
	s.entries[i] = e

	if err := s.persist(); err != nil {
		s.entries[i] = previous
		return Entry{}, err
	}

	logging.Info("Updated movie %s: %s", id, e.Title)
	return e.clone(), nil
}

// DeleteReport lists the backing files that could not be removed.
type DeleteReport struct {
	CleanupErrors []error
}

// Delete removes an entry, persists, then removes its source file and
// preview on a best-effort basis. Cleanup failures never restore the entry.
func (s *Service) Delete(_ context.Context, id string) (report DeleteReport, err error) {
	defer func() { countOp("delete", err) }()

	i := s.indexOf(id)
	if i < 0 {
		return DeleteReport{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}

	removed := s.entries[i]
	previous := s.entries
	s.entries = make([]Entry, 0, len(previous)-1)
	s.entries = append(s.entries, previous[:i]...)
	s.entries = append(s.entries, previous[i+1:]...)

	if err := s.persist(); err != nil {
		s.entries = previous
		return DeleteReport{}, err
	}

	actions := []CleanupAction{{Kind: CleanupSource, Path: removed.SourcePath}}
	if removed.HasPreview() {
		actions = append(actions, CleanupAction{Kind: CleanupPreview, Path: s.previewPath(*removed.PreviewAsset)})
	}

	logging.Info("Deleted movie %s: %s", id, removed.Title)
	return DeleteReport{CleanupErrors: runCleanup(actions, s.retry)}, nil
}

// Ingest copies a movie into the watched root, rescans and returns the
// entry created for the copy.
func (s *Service) Ingest(ctx context.Context, sourcePath string) (entry Entry, err error) {
	defer func() { countOp("ingest", err) }()

	src, err := filepath.Abs(sourcePath)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: source path %q: %v", ErrValidation, sourcePath, err)
	}
	info, err := filesystem.StatWithRetry(src, s.retry)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: source %s does not exist", ErrValidation, src)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: source %s is not a regular file", ErrValidation, src)
	}
	if !mediatypes.IsVideoFile(src) {
		return Entry{}, fmt.Errorf("%w: unsupported format %q", ErrValidation, filepath.Ext(src))
	}

	if i := s.indexOfKey(s.paths.Key(src)); i >= 0 {
		return Entry{}, fmt.Errorf("%w: %s (id %s)", ErrDuplicate, src, s.entries[i].ID)
	}

	dst, err := s.copyIntoWatched(src)
	if err != nil {
		return Entry{}, err
	}
	logging.Info("Copied %s to %s", src, dst)

	if _, err := s.Scan(ctx); err != nil {
		return Entry{}, err
	}

	if i := s.indexOfKey(s.paths.Key(dst)); i >= 0 {
		return s.entries[i].clone(), nil
	}
	return Entry{}, fmt.Errorf("%w: scan did not pick up %s", ErrNotFound, dst)
}

// indexOfKey returns the position of the entry whose source path has key,
// or -1.
func (s *Service) indexOfKey(key string) int {
	for i := range s.entries {
		if s.paths.Key(s.entries[i].SourcePath) == key {
			return i
		}
	}
	return -1
}

func (s *Service) hasKey(key string) bool { return s.indexOfKey(key) >= 0 }

// copyIntoWatched copies src into the watched root under its own name, or
// name_1.ext, name_2.ext, ... when taken.
func (s *Service) copyIntoWatched(src string) (string, error) {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 0; n < maxIngestSuffix; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		dst := filepath.Join(s.watchedDir, name)
		if s.hasKey(s.paths.Key(dst)) {
			// Under case folding "movie.mkv" would collide with "Movie.mkv".
			continue
		}

		if _, err := os.Lstat(dst); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: check %s: %v", ErrEnvironment, dst, err)
		}

		err := filesystem.CopyFile(src, dst, s.retry)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: copy %s: %v", ErrEnvironment, src, err)
		}
		return dst, nil
	}
	return "", fmt.Errorf("%w: no free name for %s in %s", ErrEnvironment, base, s.watchedDir)
}

// ReplacePreview renders imagePath as the entry's new preview. The old
// asset is removed only after the new reference is persisted.
func (s *Service) ReplacePreview(ctx context.Context, id, imagePath string) (entry Entry, err error) {
	defer func() { countOp("replace_preview", err) }()

	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}

	src, err := filepath.Abs(imagePath)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: image path %q: %v", ErrValidation, imagePath, err)
	}
	if !mediatypes.IsImageFile(src) {
		return Entry{}, fmt.Errorf("%w: unsupported image format %q", ErrValidation, filepath.Ext(src))
	}
	if info, err := filesystem.StatWithRetry(src, s.retry); err != nil || !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: image %s does not exist", ErrValidation, src)
	}

	asset := s.newAssetName(previewExt)
	assetPath := s.previewPath(asset)
	if err := s.previewer.FromImage(ctx, src, assetPath); err != nil {
		return Entry{}, fmt.Errorf("%w: render preview from %s: %v", ErrValidation, src, err)
	}

	previous := s.entries[i]
	e := previous.clone()
	e.PreviewAsset = &asset
	s.entries[i] = e

	if err := s.persist(); err != nil {
		s.entries[i] = previous
		runCleanup([]CleanupAction{{Kind: CleanupPreview, Path: assetPath}}, s.retry)
		return Entry{}, err
	}

	if previous.HasPreview() {
		runCleanup([]CleanupAction{{Kind: CleanupPreview, Path: s.previewPath(*previous.PreviewAsset)}}, s.retry)
	}

	logging.Info("Preview replaced for %s: %s", e.Title, asset)
	return e.clone(), nil
}

package catalog

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Stats aggregates the catalog.
type Stats struct {
	TotalMovies   int     `json:"total_movies"`
	TotalSize     int64   `json:"total_size"`
	TotalDuration int64   `json:"total_duration"`
	AverageRating float64 `json:"avg_rating"`
}

// Stats computes totals. The mean rating only counts entries with a
// numeric rating and is rounded to one decimal; it is 0 when none have one.
func (s *Service) Stats() Stats {
	var st Stats
	var ratingSum float64
	var rated int

	for _, e := range s.entries {
		st.TotalMovies++
		st.TotalSize += e.SizeBytes
		st.TotalDuration += e.DurationSeconds
		if e.Rating != nil {
			ratingSum += *e.Rating
			rated++
		}
	}
	if rated > 0 {
		st.AverageRating = math.Round(ratingSum/float64(rated)*10) / 10
	}
	return st
}

// Search returns entries whose title, genre or description contains query
// (case-insensitive) or whose year equals it. An empty catalog is scanned
// first.
func (s *Service) Search(ctx context.Context, query string) ([]Entry, error) {
	if len(s.entries) == 0 {
		if _, err := s.Scan(ctx); err != nil {
			return nil, err
		}
	}

	q := strings.ToLower(query)
	results := []Entry{}
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Genre), q) ||
			strings.Contains(strings.ToLower(e.Description), q) ||
			string(e.ReleaseYear) == q {
			results = append(results, e.clone())
		}
	}
	return results, nil
}

// PlaybackURL maps a file under the served root to a URL path such as
// "/movies/My%20Film.mkv".
func (s *Service) PlaybackURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %v", ErrValidation, path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: file %s", ErrNotFound, abs)
	}
	if info, err := os.Stat(s.servedDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: served directory %s", ErrEnvironment, s.servedDir)
	}

	rootKey := s.paths.Key(s.servedDir)
	if !strings.HasPrefix(s.paths.Key(abs), strings.TrimSuffix(rootKey, "/")+"/") {
		return "", fmt.Errorf("%w: %s is outside the served directory", ErrValidation, abs)
	}

	rel, err := filepath.Rel(s.servedDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the served directory", ErrValidation, abs)
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/"), nil
}

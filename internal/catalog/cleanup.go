package catalog

import (
	"fmt"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Cleanup kinds.
const (
	CleanupPreview = "preview"
	CleanupSource  = "source"
)

// CleanupAction is one best-effort file removal scheduled after the catalog
// change that made the file unnecessary has been persisted.
type CleanupAction struct {
	Kind string
	Path string
}

func (a CleanupAction) String() string {
	return fmt.Sprintf("remove %s %s", a.Kind, a.Path)
}

// runCleanup executes every action independently. Failures are logged,
// counted and returned; they never undo catalog state.
func runCleanup(actions []CleanupAction, retry filesystem.RetryConfig) []error {
	var errs []error
	for _, a := range actions {
		if err := filesystem.RemoveWithRetry(a.Path, retry); err != nil {
			logging.Warn("Cleanup failed (%s): %v", a, err)
			metrics.CleanupFailuresTotal.WithLabelValues(a.Kind).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
			continue
		}
		logging.Debug("Cleanup done: %s", a)
	}
	return errs
}

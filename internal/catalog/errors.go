package catalog

import "errors"

// Error classes returned by catalog operations. Callers test them with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrNotFound means an id or path is absent from the catalog.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was malformed: unsupported extension,
	// non-numeric year or rating, missing source file.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate means the ingest source is already cataloged.
	ErrDuplicate = errors.New("already in catalog")
	// ErrEnvironment means the watched root, served directory or catalog
	// document could not be reached. It is never retried automatically.
	ErrEnvironment = errors.New("environment unavailable")
	// ErrDegradedAsset marks a non-fatal per-file derivation failure. It is
	// only ever reported as a scan diagnostic.
	ErrDegradedAsset = errors.New("degraded asset")
)

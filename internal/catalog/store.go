package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Store persists the whole catalog as one ordered document.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Load returns the stored entries. A missing or unreadable document
	// yields an empty catalog and a logged diagnostic, never an error.
	Load() []Entry
	// Save replaces the stored document with entries.
	Save(entries []Entry) error
	Close() error
}

// JSONStore keeps the catalog in a single JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Name implements Store.
func (s *JSONStore) Name() string { return "json" }

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

// Load implements Store. Documents with numeric ids are rewritten with
// string ids straight away.
func (s *JSONStore) Load() []Entry {
	start := time.Now()
	entries, legacy, err := s.read()
	observeStore(s.Name(), "load", start, err)

	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("Catalog %s not found, starting empty", s.path)
		return []Entry{}
	case err != nil:
		logging.Warn("Catalog %s is unreadable, starting empty: %v", s.path, err)
		return []Entry{}
	}

	if legacy {
		logging.Info("Catalog %s has numeric ids, rewriting as strings", s.path)
		if err := s.Save(entries); err != nil {
			logging.Warn("Failed to rewrite catalog ids: %v", err)
		}
	}
	return entries
}

func (s *JSONStore) read() ([]Entry, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Entry{}, false, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("malformed catalog: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	legacy := false
	for i, item := range raw {
		var head struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(item, &head); err == nil {
			id := bytes.TrimSpace(head.ID)
			if len(id) > 0 && id[0] != '"' && !bytes.Equal(id, []byte("null")) {
				legacy = true
			}
		}

		var e Entry
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, false, fmt.Errorf("malformed entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, legacy, nil
}

// Save implements Store with an atomic replace of the file.
func (s *JSONStore) Save(entries []Entry) (err error) {
	start := time.Now()
	defer func() { observeStore(s.Name(), "save", start, err) }()

	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(s.path, data, 0o644)
}

// encodeEntries renders the document with four-space indentation and
// non-ASCII text left as is.
func encodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

func observeStore(backend, op string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(backend, op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

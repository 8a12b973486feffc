package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Name implements catalog.Store.
func (d *Database) Name() string { return backendName }

// Load implements catalog.Store. Query failures are logged and yield an
// empty catalog.
func (d *Database) Load() []catalog.Entry {
	start := time.Now()
	entries, err := d.loadEntries(context.Background())
	recordQuery("load", start, err)
	if err != nil {
		logging.Warn("Failed to load catalog from %s, starting empty: %v", d.dbPath, err)
		return []catalog.Entry{}
	}
	return entries
}

func (d *Database) loadEntries(ctx context.Context) ([]catalog.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, path, genre, year, rating, duration, resolution,
		       size, thumbnail, description, date_added
		FROM movies ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []catalog.Entry{}
	for rows.Next() {
		var (
			e         catalog.Entry
			year      string
			rating    sql.NullFloat64
			thumbnail sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.SourcePath, &e.Genre, &year, &rating,
			&e.DurationSeconds, &e.Resolution, &e.SizeBytes, &thumbnail,
			&e.Description, &e.CreatedAtEpoch); err != nil {
			return nil, err
		}
		e.ReleaseYear = catalog.Year(year)
		if rating.Valid {
			r := rating.Float64
			e.Rating = &r
		}
		if thumbnail.Valid {
			t := thumbnail.String
			e.PreviewAsset = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save implements catalog.Store. The table is replaced in one transaction
// so readers never see a partial catalog.
func (d *Database) Save(entries []catalog.Entry) (err error) {
	start := time.Now()
	defer func() { recordQuery("save", start, err) }()

	tx, err := d.BeginBatch()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	return d.EndBatch(tx, replaceEntries(tx, entries))
}

func replaceEntries(tx *sql.Tx, entries []catalog.Entry) error {
	// The transaction controls the operation's lifecycle.
	ctx := context.Background()

	result, err := tx.ExecContext(ctx, "DELETE FROM movies")
	if err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		metrics.DBRowsAffected.WithLabelValues("delete_movies").Observe(float64(n))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (position, id, title, path, genre, year, rating, duration,
		                    resolution, size, thumbnail, description, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		year := e.ReleaseYear
		if year == "" {
			year = catalog.YearUnknown
		}
		var rating sql.NullFloat64
		if e.Rating != nil {
			rating = sql.NullFloat64{Float64: *e.Rating, Valid: true}
		}
		var thumbnail sql.NullString
		if e.PreviewAsset != nil {
			thumbnail = sql.NullString{String: *e.PreviewAsset, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, i, e.ID, e.Title, e.SourcePath, e.Genre,
			string(year), rating, e.DurationSeconds, e.Resolution, e.SizeBytes,
			thumbnail, e.Description, e.CreatedAtEpoch); err != nil {
			return fmt.Errorf("insert movie %s: %w", e.ID, err)
		}
	}
	if len(entries) > 0 {
		metrics.DBRowsAffected.WithLabelValues("insert_movies").Observe(float64(len(entries)))
	}

	return setMetadata(ctx, tx, lastSavedKey, time.Now().UTC().Format(time.RFC3339Nano))
}

// Count returns the number of stored entries.
func (d *Database) Count(ctx context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

// ImportFrom copies the catalog held by src into an empty database. It
// reports whether anything was imported; a non-empty database is left
// untouched.
func (d *Database) ImportFrom(ctx context.Context, src catalog.Store) (bool, error) {
	n, err := d.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	entries := src.Load()
	if len(entries) == 0 {
		return false, nil
	}
	if err := d.Save(entries); err != nil {
		return false, err
	}
	logging.Info("Imported %d movies from %s store", len(entries), src.Name())
	return true, nil
}

var _ catalog.Store = (*Database)(nil)

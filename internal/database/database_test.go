package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/probe"
)

func setupTestDB(t testing.TB) (db *Database, dbPath string) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func sampleEntries() []catalog.Entry {
	rating := 8.0
	preview := "abc.jpg"
	return []catalog.Entry{
		{
			ID: "b", Title: "Second By Id", SourcePath: "/m/b.mkv", Genre: "Drama",
			ReleaseYear: "2001", Rating: &rating, DurationSeconds: 5400,
			Resolution: "1920x1080", SizeBytes: 1 << 30, PreviewAsset: &preview,
			Description: "Описание", CreatedAtEpoch: 1700000000,
		},
		{
			ID: "a", Title: "Unrated", SourcePath: "/m/a.mkv", Genre: catalog.DefaultGenre,
			ReleaseYear: catalog.YearUnknown, Resolution: catalog.Unknown,
			Description: catalog.DefaultDescription,
		},
	}
}

func TestNewDatabase(t *testing.T) {
	db, dbPath := setupTestDB(t)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := db.db.PingContext(context.Background()); err != nil {
		t.Errorf("Database ping failed: %v", err)
	}
	if db.Name() != "sqlite" || db.Path() != dbPath {
		t.Errorf("Name/Path = %q %q", db.Name(), db.Path())
	}
}

func TestNewDatabase_MissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "test.db")
	if _, err := New(context.Background(), dbPath); err == nil {
		t.Error("expected error for a missing parent directory")
	}
}

func TestLoad_Empty(t *testing.T) {
	db, _ := setupTestDB(t)
	if got := db.Load(); got == nil || len(got) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", got)
	}
}

func TestSaveLoad_PreservesOrderAndNulls(t *testing.T) {
	db, _ := setupTestDB(t)
	want := sampleEntries()

	if err := db.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got := db.Load()
	if len(got) != len(want) {
		t.Fatalf("Load() = %d entries, want %d", len(got), len(want))
	}

	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Description != "Описание" || got[0].SizeBytes != 1<<30 || *got[0].Rating != 8 || *got[0].PreviewAsset != "abc.jpg" {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1].Rating != nil || got[1].PreviewAsset != nil {
		t.Errorf("nulls not preserved: rating=%v thumbnail=%v", got[1].Rating, got[1].PreviewAsset)
	}
	if got[1].ReleaseYear != catalog.YearUnknown {
		t.Errorf("ReleaseYear = %q", got[1].ReleaseYear)
	}
}

func TestSave_Replaces(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := db.Save(sampleEntries()); err != nil {
		t.Fatal(err)
	}
	if err := db.Save(sampleEntries()[1:]); err != nil {
		t.Fatal(err)
	}

	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSave_DuplicateIDRollsBack(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := db.Save(sampleEntries()); err != nil {
		t.Fatal(err)
	}

	dup := sampleEntries()
	dup[1].ID = dup[0].ID
	if err := db.Save(dup); err == nil {
		t.Fatal("expected unique constraint error")
	}

	got := db.Load()
	if len(got) != 2 || got[1].ID != "a" {
		t.Errorf("failed save must leave the previous catalog, got %+v", got)
	}
}

func TestLastSaved(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	ts, err := db.LastSaved(ctx)
	if err != nil || !ts.IsZero() {
		t.Fatalf("LastSaved() before any save = %v, %v", ts, err)
	}

	before := time.Now().Add(-time.Second)
	if err := db.Save(nil); err != nil {
		t.Fatal(err)
	}
	ts, err = db.LastSaved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ts.Before(before) {
		t.Errorf("LastSaved() = %v, want after %v", ts, before)
	}
}

func TestMetadata(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetMetadata(ctx, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
	if err := db.SetMetadata(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, err := db.GetMetadata(ctx, "k"); err != nil || v != "v2" {
		t.Errorf("GetMetadata() = %q, %v", v, err)
	}
}

type nopProber struct{}

func (nopProber) Probe(context.Context, string) (probe.Result, error) {
	return probe.Result{DurationSeconds: 7000, Width: 720, Height: 576}, nil
}

type nopPreviewer struct{}

func (nopPreviewer) FromVideo(context.Context, string, string, int64) error {
	return errors.New("no ffmpeg in tests")
}

func (nopPreviewer) FromImage(context.Context, string, string) error {
	return errors.New("no ffmpeg in tests")
}

type staticStore struct {
	entries []catalog.Entry
}

func (s *staticStore) Name() string               { return "static" }
func (s *staticStore) Load() []catalog.Entry      { return s.entries }
func (s *staticStore) Save([]catalog.Entry) error { return errors.New("read-only") }
func (s *staticStore) Close() error               { return nil }

func TestImportFrom(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	imported, err := db.ImportFrom(ctx, &staticStore{})
	if err != nil || imported {
		t.Fatalf("import of empty source = %v, %v", imported, err)
	}

	imported, err = db.ImportFrom(ctx, &staticStore{entries: sampleEntries()})
	if err != nil || !imported {
		t.Fatalf("ImportFrom() = %v, %v", imported, err)
	}
	if n, _ := db.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	imported, err = db.ImportFrom(ctx, &staticStore{entries: sampleEntries()[:1]})
	if err != nil || imported {
		t.Errorf("non-empty database must not be overwritten: %v, %v", imported, err)
	}
}

func TestVacuum(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := db.Save(sampleEntries()); err != nil {
		t.Fatal(err)
	}
	if err := db.Vacuum(); err != nil {
		t.Errorf("Vacuum() error = %v", err)
	}
	db.UpdateDBMetrics()
}

func TestDiagnoseDatabasePermissions(t *testing.T) {
	dir := t.TempDir()
	if err := diagnoseDatabasePermissions(filepath.Join(dir, "x.db")); err != nil {
		t.Errorf("writable dir: %v", err)
	}
	if err := diagnoseDatabasePermissions(filepath.Join(dir, "nope", "x.db")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCatalogServiceOnSQLite(t *testing.T) {
	db, _ := setupTestDB(t)
	root := t.TempDir()
	watched := filepath.Join(root, "movies")
	previews := filepath.Join(root, "thumbnails")
	for _, dir := range []string{watched, previews} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(watched, "Alien.1979.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, err := catalog.New(catalog.Options{
		WatchedDir: watched,
		PreviewDir: previews,
		Store:      db,
		Prober:     nopProber{},
		Previewer:  nopPreviewer{},
	})
	if err != nil {
		t.Fatal(err)
	}
	svc.Load()
	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := db.Load()
	if len(got) != 1 || got[0].ReleaseYear != "1979" {
		t.Errorf("stored catalog = %+v", got)
	}
}

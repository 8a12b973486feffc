package startup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/database"
)

func testConfig(t *testing.T, backend, catalogFile string) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &Config{
		WatchDir:       filepath.Join(dir, "web", "movies"),
		ServeDir:       filepath.Join(dir, "web"),
		PreviewDir:     filepath.Join(dir, "web", "thumbnails"),
		CatalogPath:    filepath.Join(dir, catalogFile),
		CatalogBackend: backend,
		FFprobePath:    "ffprobe",
		FFmpegPath:     "ffmpeg",
	}
	for _, d := range []string{cfg.WatchDir, cfg.PreviewDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestJSONSibling(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/movies.db", "/data/movies.json"},
		{"/data/catalog.sqlite3", "/data/catalog.json"},
		{"/data/catalog", "/data/catalog.json"},
		{"/data/v1.2/catalog.db", "/data/v1.2/catalog.json"},
	}
	for _, tt := range tests {
		if got := jsonSibling(tt.in); got != tt.want {
			t.Errorf("jsonSibling(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		file     string
		wantName string
		wantErr  bool
	}{
		{"json", BackendJSON, "movies.json", "json", false},
		{"sqlite", BackendSQLite, "movies.db", "sqlite", false},
		{"unknown", "postgres", "movies", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.backend, tt.file)
			store, err := OpenStore(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			defer store.Close()
			if store.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", store.Name(), tt.wantName)
			}
		})
	}
}

func TestOpenStore_SQLiteImportsJSONSibling(t *testing.T) {
	cfg := testConfig(t, BackendSQLite, "movies.db")
	legacy := catalog.NewJSONStore(jsonSibling(cfg.CatalogPath))
	if err := legacy.Save([]catalog.Entry{{
		ID: "1", Title: "Брат", SourcePath: filepath.Join(cfg.WatchDir, "Brother.mkv"),
		Genre: catalog.DefaultGenre, ReleaseYear: "1997", Resolution: catalog.Unknown,
		Description: catalog.DefaultDescription,
	}}); err != nil {
		t.Fatal(err)
	}

	store, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer store.Close()

	if _, ok := store.(*database.Database); !ok {
		t.Fatalf("store = %T, want *database.Database", store)
	}
	got := store.Load()
	if len(got) != 1 || got[0].Title != "Брат" {
		t.Errorf("imported catalog = %+v", got)
	}
}

func TestNewCatalog(t *testing.T) {
	cfg := testConfig(t, BackendJSON, "movies.json")
	store := catalog.NewJSONStore(cfg.CatalogPath)
	if err := store.Save([]catalog.Entry{{
		ID: "1", Title: "Alien", SourcePath: filepath.Join(cfg.WatchDir, "Alien.mkv"),
		Genre: catalog.DefaultGenre, ReleaseYear: "1979", Resolution: catalog.Unknown,
		Description: catalog.DefaultDescription,
	}}); err != nil {
		t.Fatal(err)
	}

	svc, err := NewCatalog(cfg, store, nil)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if svc.Len() != 1 {
		t.Errorf("Len() = %d, want the stored catalog loaded", svc.Len())
	}
}

func TestNewCatalog_MissingDirectory(t *testing.T) {
	cfg := testConfig(t, BackendJSON, "movies.json")
	cfg.WatchDir = ""
	if _, err := NewCatalog(cfg, catalog.NewJSONStore(cfg.CatalogPath), nil); err == nil {
		t.Error("expected error without a watched directory")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/database"
	"movie-catalog/internal/probe"
)

type stubProber struct{}

func (stubProber) Probe(context.Context, string) (probe.Result, error) {
	return probe.Result{DurationSeconds: 3725, Width: 1280, Height: 720}, nil
}

type stubPreviewer struct{}

func (stubPreviewer) FromVideo(_ context.Context, _, dst string, _ int64) error {
	return os.WriteFile(dst, []byte("frame"), 0o644)
}

func (stubPreviewer) FromImage(_ context.Context, _, dst string) error {
	return os.WriteFile(dst, []byte("image"), 0o644)
}

type fixture struct {
	root    string
	watched string
	store   func() catalog.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{root: root, watched: filepath.Join(root, "web", "movies")}
	for _, dir := range []string{f.watched, filepath.Join(root, "web", "thumbnails")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	f.store = func() catalog.Store { return catalog.NewJSONStore(filepath.Join(root, "movies.json")) }
	return f
}

func (f *fixture) open(_ context.Context) (*session, error) {
	store := f.store()
	svc, err := catalog.New(catalog.Options{
		WatchedDir: f.watched,
		PreviewDir: filepath.Join(f.root, "web", "thumbnails"),
		Store:      store,
		Prober:     stubProber{},
		Previewer:  stubPreviewer{},
	})
	if err != nil {
		return nil, err
	}
	svc.Load()
	return &session{svc: svc, store: store}, nil
}

func (f *fixture) addMovie(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.watched, name)
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(f.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *fixture) entries(t *testing.T) []catalog.Entry {
	t.Helper()
	return f.store().Load()
}

func TestScanAndList(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Brother.1997.mkv")

	out, err := f.run(t, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 movies, 1 added, 0 removed") {
		t.Errorf("scan output = %q", out)
	}

	out, err = f.run(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"TITLE", "Brother 1997", "1997", "1:02:05", "2.0 kB"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestListJSON(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat.mkv")

	out, err := f.run(t, "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var movies []catalog.Entry
	if err := json.Unmarshal([]byte(out), &movies); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(movies) != 1 || movies[0].Title != "Heat" {
		t.Errorf("movies = %+v", movies)
	}

	// --no-scan shows the stored catalog only.
	f.addMovie(t, "Alien.mkv")
	out, err = f.run(t, "list", "--json", "--no-scan")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(out), &movies); err != nil || len(movies) != 1 {
		t.Errorf("no-scan list = %d movies, %v", len(movies), err)
	}
}

func TestUpdateAndStats(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat.mkv")
	if _, err := f.run(t, "scan"); err != nil {
		t.Fatal(err)
	}
	id := f.entries(t)[0].ID

	if _, err := f.run(t, "update", id, "--rating", "8.5", "--genre", "Crime"); err != nil {
		t.Fatal(err)
	}
	e := f.entries(t)[0]
	if e.Genre != "Crime" || *e.Rating != 8.5 || e.Title != "Heat" {
		t.Errorf("entry = %+v", e)
	}

	if _, err := f.run(t, "update", id, "--year", "soon"); !errors.Is(err, catalog.ErrValidation) {
		t.Errorf("bad year error = %v", err)
	}
	if _, err := f.run(t, "update", "nope", "--title", "x"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing id error = %v", err)
	}

	out, err := f.run(t, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Movies:         1") || !strings.Contains(out, "Average rating: 8.5") {
		t.Errorf("stats output = %q", out)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat.1995.mkv")
	f.addMovie(t, "Alien.mkv")

	out, err := f.run(t, "search", "1995", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var movies []catalog.Entry
	if err := json.Unmarshal([]byte(out), &movies); err != nil {
		t.Fatal(err)
	}
	if len(movies) != 1 || movies[0].ReleaseYear != "1995" {
		t.Errorf("search = %+v", movies)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	path := f.addMovie(t, "Heat.mkv")
	if _, err := f.run(t, "scan"); err != nil {
		t.Fatal(err)
	}
	id := f.entries(t)[0].ID

	tests := []struct {
		name        string
		interactive bool
		input       string
		yes         bool
		wantErr     bool
		wantDeleted bool
	}{
		{name: "not a terminal without --yes", interactive: false, wantErr: true},
		{name: "answer no", interactive: true, input: "n\n"},
		{name: "empty answer", interactive: true, input: "\n"},
		{name: "answer yes", interactive: true, input: "yes\n", wantDeleted: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := deleteCommand(f.open, strings.NewReader(tt.input), func() bool { return tt.interactive })
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{id})
			err := cmd.ExecuteContext(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			_, statErr := os.Stat(path)
			if deleted := os.IsNotExist(statErr); deleted != tt.wantDeleted {
				t.Errorf("file deleted = %v, want %v (output %q)", deleted, tt.wantDeleted, out.String())
			}
		})
	}

	if n := len(f.entries(t)); n != 0 {
		t.Errorf("catalog has %d entries after delete", n)
	}
}

func TestDeleteYesFlag(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat.mkv")
	if _, err := f.run(t, "scan"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.run(t, "delete", "--yes", f.entries(t)[0].ID); err != nil {
		t.Fatal(err)
	}
	if n := len(f.entries(t)); n != 0 {
		t.Errorf("catalog has %d entries", n)
	}
}

func TestIngestPreviewPlayback(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.root, "Brother.1997.avi")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := f.run(t, "ingest", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Added Brother 1997") {
		t.Errorf("ingest output = %q", out)
	}
	e := f.entries(t)[0]
	if _, err := f.run(t, "ingest", e.SourcePath); !errors.Is(err, catalog.ErrDuplicate) {
		t.Errorf("ingest of a cataloged file = %v, want ErrDuplicate", err)
	}

	img := filepath.Join(f.root, "cover.jpg")
	if err := os.WriteFile(img, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.run(t, "preview", e.ID, img); err != nil {
		t.Fatal(err)
	}
	if got := f.entries(t)[0]; *got.PreviewAsset == *e.PreviewAsset {
		t.Error("preview asset not replaced")
	}

	out, err = f.run(t, "playback", e.SourcePath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "/movies/Brother.1997.avi" {
		t.Errorf("playback = %q", out)
	}
}

func TestVacuum(t *testing.T) {
	f := newFixture(t)
	if _, err := f.run(t, "vacuum"); err == nil || !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("vacuum on json store error = %v", err)
	}

	dbPath := filepath.Join(f.root, "movies.db")
	f.store = func() catalog.Store {
		db, err := database.New(context.Background(), dbPath)
		if err != nil {
			t.Fatal(err)
		}
		return db
	}
	out, err := f.run(t, "vacuum")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Vacuumed") {
		t.Errorf("vacuum output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "catalogctl ") {
		t.Errorf("version output = %q", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.input), &out, "Sure?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Sure? [y/N]: " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "-"},
		{59, "0:00:59"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
